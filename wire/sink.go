package wire

import (
	"context"
	"io"
	"sync"

	"github.com/draftyhq/chunkstream/sink"
	"github.com/draftyhq/chunkstream/types"
)

// Sink adapts a frame Encoder to the sink.Sink interface, delivering each
// chunk message as one frame on an underlying byte stream.
type Sink struct {
	mu     sync.Mutex
	enc    *Encoder
	closer io.Closer
}

// NewSink creates a framed sink writing to w.
// If w is an io.Closer, Close closes it.
func NewSink(w io.Writer) *Sink {
	s := &Sink{enc: NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// WriteChunk writes the chunk message as a single frame.
func (s *Sink) WriteChunk(ctx context.Context, msg *types.ChunkMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.WriteChunk(msg)
}

// Close closes the underlying writer if it is closable.
func (s *Sink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Verify Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)
