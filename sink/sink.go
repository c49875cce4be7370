// Package sink defines the transport boundary for emitted chunk messages.
//
// A sink receives each chunk message in chunk-index order, one call per
// chunk, and owns framing, serialization, and delivery. Implementations
// decide whether WriteChunk blocks (network write) or returns immediately
// (in-memory buffer); the emitter hands over each chunk before building
// the next either way.
package sink

import (
	"context"

	"github.com/draftyhq/chunkstream/types"
)

// Sink receives one emission's chunk messages in order.
type Sink interface {
	// WriteChunk delivers a single chunk message. Implementations must
	// preserve call order and should flush before returning so that a
	// consumer sees chunks as they are produced.
	// Must respect context cancellation and deadlines.
	WriteChunk(ctx context.Context, msg *types.ChunkMessage) error

	// Close releases sink resources.
	Close() error
}
