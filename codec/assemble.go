package codec

import (
	"errors"
	"fmt"

	"github.com/draftyhq/chunkstream/types"
)

// ErrEmptyStream is returned when assembling zero chunk messages.
var ErrEmptyStream = errors.New("chunk stream is empty")

// Assemble reconstructs the original widget output from a complete chunk
// message stream, in chunk-index order.
//
// For each field, every sequence appearance across the stream is a segment
// and they concatenate in order; a scalar appears exactly once. The stream
// must be exactly the chunk_count messages of one emission, indices 1..N.
func Assemble(msgs []*types.ChunkMessage) (*types.WidgetOutput, error) {
	if len(msgs) == 0 {
		return nil, ErrEmptyStream
	}

	first := msgs[0]
	count := first.Header.ChunkCount
	if count != len(msgs) {
		return nil, fmt.Errorf("stream has %d chunks, header says %d", len(msgs), count)
	}
	for i, m := range msgs {
		if m.Header.ChunkIndex != i+1 {
			return nil, fmt.Errorf("chunk at position %d has index %d, want %d", i, m.Header.ChunkIndex, i+1)
		}
		if m.Header.ChunkCount != count {
			return nil, fmt.Errorf("chunk %d reports count %d, want %d", m.Header.ChunkIndex, m.Header.ChunkCount, count)
		}
		if len(m.Results) != len(first.Results) {
			return nil, fmt.Errorf("chunk %d carries %d updates, want %d", m.Header.ChunkIndex, len(m.Results), len(first.Results))
		}
	}

	out := &types.WidgetOutput{
		Type:     first.Type,
		DraftyID: first.DraftyID,
		Command:  first.Command,
		Results:  make([]types.UpdateResult, len(first.Results)),
	}

	for u := range first.Results {
		out.Results[u] = types.UpdateResult{
			PlotType: first.Results[u].PlotType,
			Args:     make(map[string]any),
			Data:     make(map[string]any),
		}
		for _, group := range []types.Group{types.GroupArgs, types.GroupData} {
			merged := out.Results[u].Fields(group)
			for _, m := range msgs {
				for key, value := range m.Results[u].Fields(group) {
					if err := mergeField(merged, key, value); err != nil {
						return nil, fmt.Errorf("chunk %d, results[%d].%s[%q]: %w", m.Header.ChunkIndex, u, group, key, err)
					}
				}
			}
		}
	}

	return out, nil
}

// mergeField folds one appearance of a field into the accumulator.
// Sequences concatenate across appearances; scalars must appear once.
func mergeField(acc map[string]any, key string, value any) error {
	existing, seen := acc[key]
	if !seen {
		if seg, ok := value.([]any); ok {
			// Copy so later appends never alias the incoming segment.
			acc[key] = append([]any(nil), seg...)
		} else {
			acc[key] = value
		}
		return nil
	}

	prev, prevSeq := existing.([]any)
	seg, curSeq := value.([]any)
	if !prevSeq || !curSeq {
		return errors.New("scalar field appears in more than one chunk")
	}
	acc[key] = append(prev, seg...)
	return nil
}
