package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/draftyhq/chunkstream/types"
)

// WriterSink streams chunk messages as newline-delimited JSON to an
// io.Writer: one compact JSON document per chunk, flushed after every
// write so a consumer on the other end of a pipe sees each chunk as soon
// as it is produced.
type WriterSink struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer
}

// NewWriterSink creates a sink writing NDJSON to w.
// If w is an io.Closer, Close closes it after the final flush.
func NewWriterSink(w io.Writer) *WriterSink {
	s := &WriterSink{buf: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// WriteChunk encodes the chunk as one JSON line and flushes.
func (s *WriterSink) WriteChunk(ctx context.Context, msg *types.ChunkMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("writer sink: marshal chunk: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.buf.Write(data); err != nil {
		return fmt.Errorf("writer sink: write chunk: %w", err)
	}
	if err := s.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("writer sink: write chunk: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("writer sink: flush: %w", err)
	}
	return nil
}

// Close flushes remaining output and closes the underlying writer if it
// is closable.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("writer sink: flush on close: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Verify WriterSink implements Sink.
var _ Sink = (*WriterSink)(nil)
