// Package wire implements length-prefixed msgpack framing for chunk
// message streams carried over byte-oriented transports (pipes, sockets,
// files). Each frame is a 4-byte big-endian payload length followed by one
// msgpack-encoded chunk message.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/draftyhq/chunkstream/types"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a framing error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if this error terminates the stream.
// Partial and oversized frames cannot be recovered from in-band.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError returns true if the error is a fatal frame error.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// Encoder writes length-prefixed msgpack chunk frames to a stream.
type Encoder struct {
	writer io.Writer
}

// NewEncoder creates a new frame encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

// WriteChunk encodes msg and writes it as a single frame.
func (e *Encoder) WriteChunk(msg *types.ChunkMessage) error {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode chunk message",
			Err:  err,
		}
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := e.writer.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := e.writer.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Decoder reads length-prefixed msgpack chunk frames from a stream.
type Decoder struct {
	reader io.Reader
}

// NewDecoder creates a new frame decoder.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// ReadChunk reads and decodes a single chunk message frame.
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame (fatal)
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit (fatal)
//   - *FrameError with Kind=FrameErrorDecode: undecodable payload
func (d *Decoder) ReadChunk() (*types.ChunkMessage, error) {
	payload, err := d.readFrame()
	if err != nil {
		return nil, err
	}

	var msg types.ChunkMessage
	if err := msgpack.Unmarshal(payload, &msg); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode chunk message",
			Err:  err,
		}
	}
	return &msg, nil
}

// readFrame reads a single raw frame payload from the stream.
func (d *Decoder) readFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		// Partial read of length prefix
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}
	return payload, nil
}
