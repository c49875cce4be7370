// Package reader loads recorded chunk streams for the read-only CLI
// commands (assemble, inspect, stats).
//
// Two stream encodings are supported: newline-delimited JSON as written
// by the stdout sink, and length-prefixed msgpack frames as written by
// the frames sink.
package reader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/draftyhq/chunkstream/types"
	"github.com/draftyhq/chunkstream/wire"
)

// Format identifies a recorded stream encoding.
type Format string

// Supported stream formats.
const (
	FormatNDJSON Format = "ndjson"
	FormatFrames Format = "frames"
)

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "ndjson", "":
		return FormatNDJSON, nil
	case "frames":
		return FormatFrames, nil
	default:
		return "", fmt.Errorf("invalid stream format: %q (must be ndjson or frames)", s)
	}
}

// StreamReader reads a complete chunk message stream.
type StreamReader interface {
	// ReadStream reads all chunk messages, in stream order.
	ReadStream() ([]*types.ChunkMessage, error)
}

// New returns a StreamReader for the given format.
func New(r io.Reader, format Format) (StreamReader, error) {
	switch format {
	case FormatNDJSON:
		return &ndjsonReader{r: r}, nil
	case FormatFrames:
		return &frameReader{dec: wire.NewDecoder(r)}, nil
	default:
		return nil, fmt.Errorf("invalid stream format: %q", format)
	}
}

// maxLineSize bounds a single NDJSON line (one chunk message).
// Matches the frame transport's payload limit.
const maxLineSize = wire.MaxPayloadSize

// ndjsonReader reads one JSON chunk message per line.
type ndjsonReader struct {
	r io.Reader
}

func (n *ndjsonReader) ReadStream() ([]*types.ChunkMessage, error) {
	scanner := bufio.NewScanner(n.r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var msgs []*types.ChunkMessage
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var msg types.ChunkMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("line %d: invalid chunk message: %w", line, err)
		}
		msgs = append(msgs, &msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return msgs, nil
}

// frameReader reads length-prefixed msgpack chunk frames.
type frameReader struct {
	dec *wire.Decoder
}

func (f *frameReader) ReadStream() ([]*types.ChunkMessage, error) {
	var msgs []*types.ChunkMessage
	for {
		msg, err := f.dec.ReadChunk()
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", len(msgs)+1, err)
		}
		msgs = append(msgs, msg)
	}
}
