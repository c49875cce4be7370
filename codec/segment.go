// Package codec implements the chunked array-streaming codec: byte-budgeted
// segmentation of array fields and ordered emission of self-describing chunk
// messages that a receiver can reassemble losslessly.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/draftyhq/chunkstream/types"
)

// Encoded-size accounting for segment packing. Sizes are computed against
// the compact JSON encoding of the value.
const (
	// containerOverhead is the encoded size of an empty array, "[]".
	containerOverhead = 2
	// elementSeparator is the comma between adjacent elements.
	elementSeparator = 1
)

// Segment is a contiguous run of one array's top-level elements.
type Segment struct {
	// Elems are the elements of this segment, in original order.
	Elems []any
	// Bytes is the compact JSON size of the segment, including the
	// container overhead.
	Bytes int
	// Oversized marks a single-element segment whose encoding exceeds
	// the byte budget. Such segments are still emitted: the budget is a
	// target, not a ceiling, for elements that cannot be split further.
	Oversized bool
}

// SegmentPlan is the ordered, non-empty segment list for one field whose
// whole encoding exceeds the budget. Concatenating the segments' elements
// in order reproduces the original array exactly.
type SegmentPlan struct {
	Segments []Segment
}

// Plan decides whether value needs splitting under budget bytes.
//
// A nil plan means no split is needed: the whole encoding fits, the value
// is a scalar, or the array is empty. Otherwise top-level elements are
// packed greedily into successive segments, each kept within budget except
// for single elements that alone exceed it (see Segment.Oversized).
//
// The plan is deterministic: it depends only on the value's own element
// order and the budget.
func Plan(value any, budget int) (*SegmentPlan, error) {
	if err := types.ValidateValue(value); err != nil {
		return nil, err
	}

	arr, ok := value.([]any)
	if !ok || len(arr) == 0 {
		return nil, nil
	}

	total, err := encodedLen(arr)
	if err != nil {
		return nil, err
	}
	if total <= budget {
		return nil, nil
	}

	b := newSegmentBuilder()
	segments := make([]Segment, 0, total/budget+1)
	for _, elem := range arr {
		n, err := encodedLen(elem)
		if err != nil {
			return nil, err
		}
		if !b.empty() && !b.fits(n, budget) {
			segments = append(segments, b.seal(budget))
		}
		b.add(elem, n)
	}
	segments = append(segments, b.seal(budget))

	return &SegmentPlan{Segments: segments}, nil
}

// segmentBuilder accumulates elements and a running encoded byte count
// for the segment under construction. Sealing produces an immutable
// Segment and resets the builder for the next one.
type segmentBuilder struct {
	elems []any
	bytes int
}

func newSegmentBuilder() *segmentBuilder {
	return &segmentBuilder{bytes: containerOverhead}
}

func (b *segmentBuilder) empty() bool {
	return len(b.elems) == 0
}

// cost is the byte growth of adding an element whose encoding is n bytes.
func (b *segmentBuilder) cost(n int) int {
	if len(b.elems) == 0 {
		return n
	}
	return n + elementSeparator
}

// fits reports whether an element of n encoded bytes stays within budget.
func (b *segmentBuilder) fits(n, budget int) bool {
	return b.bytes+b.cost(n) <= budget
}

func (b *segmentBuilder) add(elem any, n int) {
	b.bytes += b.cost(n)
	b.elems = append(b.elems, elem)
}

func (b *segmentBuilder) seal(budget int) Segment {
	s := Segment{
		Elems:     b.elems,
		Bytes:     b.bytes,
		Oversized: len(b.elems) == 1 && b.bytes > budget,
	}
	b.elems = nil
	b.bytes = containerOverhead
	return s
}

// encodedLen returns the compact JSON size of v in bytes.
func encodedLen(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode value: %w", err)
	}
	return len(data), nil
}
