package codec

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/draftyhq/chunkstream/log"
	"github.com/draftyhq/chunkstream/metrics"
	"github.com/draftyhq/chunkstream/sink"
	"github.com/draftyhq/chunkstream/types"
)

// ErrInvalidBudget is returned when the byte budget is not positive.
var ErrInvalidBudget = errors.New("byte budget must be > 0")

// Config configures an Emitter.
type Config struct {
	// Budget is the target byte budget per segment (required, > 0).
	Budget int
	// Logger is an optional logger for emission observability.
	Logger *log.Logger
	// Metrics is an optional collector; nil disables metrics.
	Metrics *metrics.Collector
}

// Emitter splits a widget output into chunk messages and hands them to a
// sink in chunk-index order.
//
// Emission is a single synchronous pass with no shared state: one Emit call
// owns its envelope snapshot end to end, and concurrent Emit calls on
// separate emitters need no coordination. Each chunk message is written to
// the sink before the next one is built, so memory stays bounded no matter
// how many chunks the envelope produces.
type Emitter struct {
	sink    sink.Sink
	budget  int
	logger  *log.Logger
	metrics *metrics.Collector
}

// New creates an Emitter writing to s.
func New(s sink.Sink, cfg Config) (*Emitter, error) {
	if s == nil {
		return nil, errors.New("emitter requires a sink")
	}
	if cfg.Budget <= 0 {
		return nil, ErrInvalidBudget
	}
	return &Emitter{
		sink:    s,
		budget:  cfg.Budget,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// fieldRef locates one field within an envelope.
type fieldRef struct {
	update int
	group  types.Group
	key    string
}

// Emit plans every array field of out, derives the global chunk count, and
// writes chunk messages 1..count to the sink in order.
//
// Failure semantics are fail-fast: an unsupported field value or a
// malformed envelope aborts before anything reaches the sink. A single
// element exceeding the budget is not fatal; its segment is emitted
// oversized and the condition is logged and counted.
//
// Cancellation is checked between chunk productions. Abandoning the stream
// mid-way leaves no state behind; nothing is persisted by the emitter.
func (e *Emitter) Emit(ctx context.Context, out *types.WidgetOutput) error {
	e.metrics.IncEmitStarted()

	if out == nil {
		e.metrics.IncEmitFailed()
		return &EmitError{Kind: EmitErrorMalformedEnvelope, Update: -1, Msg: "nil envelope"}
	}

	plans, err := e.planFields(out)
	if err != nil {
		e.metrics.IncEmitFailed()
		return err
	}

	chunkCount := 1
	for _, plan := range plans {
		if n := len(plan.Segments); n > chunkCount {
			chunkCount = n
		}
	}

	for index := 1; index <= chunkCount; index++ {
		if err := ctx.Err(); err != nil {
			e.metrics.IncEmitFailed()
			return fmt.Errorf("emit canceled before chunk %d/%d: %w", index, chunkCount, err)
		}

		msg := buildChunk(out, plans, index, chunkCount)
		if err := e.sink.WriteChunk(ctx, msg); err != nil {
			e.metrics.IncSinkWriteFailure()
			e.metrics.IncEmitFailed()
			e.logWriteFailure(index, chunkCount, err)
			return fmt.Errorf("write chunk %d/%d: %w", index, chunkCount, err)
		}
		e.metrics.IncChunkEmitted()
	}

	e.metrics.IncEmitCompleted()
	e.logEmitted(out, chunkCount)

	return nil
}

// planFields runs the segmenter over every field of every update and
// returns the split plans keyed by field. Fields that fit whole have no
// entry. Keys are visited in sorted order so that the first failing field
// is deterministic.
func (e *Emitter) planFields(out *types.WidgetOutput) (map[fieldRef]*SegmentPlan, error) {
	plans := make(map[fieldRef]*SegmentPlan)

	for i := range out.Results {
		res := &out.Results[i]
		for _, group := range []types.Group{types.GroupArgs, types.GroupData} {
			fields := res.Fields(group)
			for _, key := range sortedKeys(fields) {
				plan, err := Plan(fields[key], e.budget)
				if err != nil {
					return nil, &EmitError{
						Kind:   EmitErrorUnsupportedField,
						Update: i,
						Group:  group,
						Key:    key,
						Err:    err,
					}
				}
				e.metrics.IncFieldPlanned()
				if plan == nil {
					continue
				}
				plans[fieldRef{update: i, group: group, key: key}] = plan
				e.metrics.IncFieldSplit()
				e.metrics.AddSegments(int64(len(plan.Segments)))
				for s := range plan.Segments {
					if plan.Segments[s].Oversized {
						e.metrics.IncOversizedSegment()
						e.logOversized(i, group, key, s, plan.Segments[s].Bytes)
					}
				}
			}
		}
	}

	return plans, nil
}

// buildChunk assembles the chunk message for one index. A field appears in
// the view iff it fits whole and index is 1, or its plan has a segment at
// this index. Update order and the envelope's scalar metadata are
// preserved verbatim.
func buildChunk(out *types.WidgetOutput, plans map[fieldRef]*SegmentPlan, index, count int) *types.ChunkMessage {
	results := make([]types.UpdateResult, len(out.Results))
	for i := range out.Results {
		res := &out.Results[i]
		results[i] = types.UpdateResult{
			PlotType: res.PlotType,
			Args:     buildGroupView(res.Args, plans, i, types.GroupArgs, index),
			Data:     buildGroupView(res.Data, plans, i, types.GroupData, index),
		}
	}

	return &types.ChunkMessage{
		Header:   types.ChunkHeader{ChunkIndex: index, ChunkCount: count},
		Type:     out.Type,
		DraftyID: out.DraftyID,
		Command:  out.Command,
		Results:  results,
	}
}

func buildGroupView(fields map[string]any, plans map[fieldRef]*SegmentPlan, update int, group types.Group, index int) map[string]any {
	view := make(map[string]any, len(fields))
	for key, value := range fields {
		plan, split := plans[fieldRef{update: update, group: group, key: key}]
		switch {
		case split && index <= len(plan.Segments):
			view[key] = plan.Segments[index-1].Elems
		case !split && index == 1:
			view[key] = value
		}
	}
	return view
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Logging helpers ---

func (e *Emitter) logEmitted(out *types.WidgetOutput, count int) {
	if e.logger == nil {
		return
	}
	e.logger.Info("chunk stream emitted", map[string]any{
		"chunk_count": count,
		"updates":     len(out.Results),
		"budget":      e.budget,
	})
}

func (e *Emitter) logWriteFailure(index, count int, err error) {
	if e.logger == nil {
		return
	}
	e.logger.Error("sink write failed", map[string]any{
		"chunk_index": index,
		"chunk_count": count,
		"error":       err.Error(),
	})
}

// logOversized records the budget-too-small-for-element diagnostic. The
// stream still succeeds; downstream consumers enforcing hard message-size
// limits need the signal to act on.
func (e *Emitter) logOversized(update int, group types.Group, key string, segment, bytes int) {
	if e.logger == nil {
		return
	}
	e.logger.Warn("segment exceeds byte budget", map[string]any{
		"update":  update,
		"group":   string(group),
		"key":     key,
		"segment": segment,
		"bytes":   bytes,
		"budget":  e.budget,
	})
}
