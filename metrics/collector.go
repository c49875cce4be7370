// Package metrics provides per-producer metrics collection for the chunk
// codec. The Collector accumulates counters across emissions; it is a leaf
// package with no internal dependencies. All increment methods are
// nil-receiver safe so instrumentation can be left unwired in tests.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of the collector's counters.
// Safe to read concurrently after creation.
type Snapshot struct {
	// Emission lifecycle
	EmitsStarted   int64
	EmitsCompleted int64
	EmitsFailed    int64

	// Segmentation
	FieldsPlanned     int64
	FieldsSplit       int64
	SegmentsProduced  int64
	OversizedSegments int64

	// Delivery
	ChunksEmitted     int64
	SinkWriteFailures int64

	// Dimensions (informational, set at construction)
	Sink     string
	DraftyID string
}

// Collector accumulates chunk codec metrics.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	emitsStarted   int64
	emitsCompleted int64
	emitsFailed    int64

	fieldsPlanned     int64
	fieldsSplit       int64
	segmentsProduced  int64
	oversizedSegments int64

	chunksEmitted     int64
	sinkWriteFailures int64

	sink     string
	draftyID string
}

// NewCollector creates a Collector with dimension labels.
// sink names the transport in use; draftyID is the stream identity.
func NewCollector(sink, draftyID string) *Collector {
	return &Collector{sink: sink, draftyID: draftyID}
}

// IncEmitStarted records the start of an Emit call.
func (c *Collector) IncEmitStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.emitsStarted++
	c.mu.Unlock()
}

// IncEmitCompleted records a successful emission.
func (c *Collector) IncEmitCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.emitsCompleted++
	c.mu.Unlock()
}

// IncEmitFailed records a fatal emission failure.
func (c *Collector) IncEmitFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.emitsFailed++
	c.mu.Unlock()
}

// IncFieldPlanned records one field passed through the segmenter.
func (c *Collector) IncFieldPlanned() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fieldsPlanned++
	c.mu.Unlock()
}

// IncFieldSplit records one field that required splitting.
func (c *Collector) IncFieldSplit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fieldsSplit++
	c.mu.Unlock()
}

// AddSegments records n segments produced by one plan.
func (c *Collector) AddSegments(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsProduced += n
	c.mu.Unlock()
}

// IncOversizedSegment records a segment whose single element exceeded the
// byte budget. Non-fatal; the segment is still emitted.
func (c *Collector) IncOversizedSegment() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.oversizedSegments++
	c.mu.Unlock()
}

// IncChunkEmitted records one chunk message handed to the sink.
func (c *Collector) IncChunkEmitted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.chunksEmitted++
	c.mu.Unlock()
}

// IncSinkWriteFailure records a failed sink write.
func (c *Collector) IncSinkWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sinkWriteFailures++
	c.mu.Unlock()
}

// Snapshot returns a consistent copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		EmitsStarted:      c.emitsStarted,
		EmitsCompleted:    c.emitsCompleted,
		EmitsFailed:       c.emitsFailed,
		FieldsPlanned:     c.fieldsPlanned,
		FieldsSplit:       c.fieldsSplit,
		SegmentsProduced:  c.segmentsProduced,
		OversizedSegments: c.oversizedSegments,
		ChunksEmitted:     c.chunksEmitted,
		SinkWriteFailures: c.sinkWriteFailures,
		Sink:              c.sink,
		DraftyID:          c.draftyID,
	}
}
