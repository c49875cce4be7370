package sink

import (
	"context"
	"sync"

	"github.com/draftyhq/chunkstream/types"
)

// StubSink is a test sink that records chunk messages without delivering
// them anywhere. Tracks write statistics for test assertions.
type StubSink struct {
	mu sync.Mutex

	// ChunksWritten is the total count of chunks written.
	ChunksWritten int64
	// Closed indicates whether Close was called.
	Closed bool

	// Written stores all written chunk messages, in write order.
	Written []*types.ChunkMessage

	// ErrorOnWrite, if non-nil, is returned by WriteChunk once FailAfter
	// successful writes have happened.
	ErrorOnWrite error
	// FailAfter is the number of writes that succeed before ErrorOnWrite
	// applies. Zero fails immediately when ErrorOnWrite is set.
	FailAfter int
}

// NewStubSink creates a new stub sink for testing.
func NewStubSink() *StubSink {
	return &StubSink{Written: make([]*types.ChunkMessage, 0)}
}

// WriteChunk records the chunk without delivering it.
func (s *StubSink) WriteChunk(_ context.Context, msg *types.ChunkMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil && len(s.Written) >= s.FailAfter {
		return s.ErrorOnWrite
	}

	s.ChunksWritten++
	s.Written = append(s.Written, msg)
	return nil
}

// Close marks the sink as closed.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closed = true
	return nil
}

// Chunks returns a snapshot of the written chunk messages.
func (s *StubSink) Chunks() []*types.ChunkMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.ChunkMessage, len(s.Written))
	copy(out, s.Written)
	return out
}

// Verify StubSink implements Sink.
var _ Sink = (*StubSink)(nil)
