package wire_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/draftyhq/chunkstream/sink"
	"github.com/draftyhq/chunkstream/types"
	"github.com/draftyhq/chunkstream/wire"
)

func testChunk(index, count int) *types.ChunkMessage {
	return &types.ChunkMessage{
		Header:   types.ChunkHeader{ChunkIndex: index, ChunkCount: count},
		Type:     "widget",
		DraftyID: "d1",
		Command:  "init",
		Results: []types.UpdateResult{
			{
				PlotType: "scatter",
				Args:     map[string]any{"x": []any{int8(1), int8(2), int8(3)}},
				Data:     map[string]any{"z": []any{[]any{int8(1), int8(2)}}},
			},
		},
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)

	for i := 1; i <= 3; i++ {
		if err := enc.WriteChunk(testChunk(i, 3)); err != nil {
			t.Fatalf("WriteChunk %d failed: %v", i, err)
		}
	}

	dec := wire.NewDecoder(&buf)
	for i := 1; i <= 3; i++ {
		msg, err := dec.ReadChunk()
		if err != nil {
			t.Fatalf("ReadChunk %d failed: %v", i, err)
		}
		if msg.Header.ChunkIndex != i || msg.Header.ChunkCount != 3 {
			t.Errorf("header = %+v, want {%d 3}", msg.Header, i)
		}
		if msg.DraftyID != "d1" || msg.Command != "init" {
			t.Errorf("metadata lost in round trip: %+v", msg)
		}
		if len(msg.Results) != 1 || msg.Results[0].PlotType != "scatter" {
			t.Errorf("results lost in round trip: %+v", msg.Results)
		}
	}

	if _, err := dec.ReadChunk(); err != io.EOF {
		t.Errorf("expected io.EOF at stream end, got %v", err)
	}
}

func TestDecoder_PartialFrameIsFatal(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.WriteChunk(testChunk(1, 1)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}

	// Truncate mid-payload.
	truncated := buf.Bytes()[:buf.Len()-3]
	dec := wire.NewDecoder(bytes.NewReader(truncated))

	_, err := dec.ReadChunk()
	var frameErr *wire.FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != wire.FrameErrorPartial {
		t.Errorf("Kind = %v, want FrameErrorPartial", frameErr.Kind)
	}
	if !wire.IsFatalFrameError(err) {
		t.Error("partial frame must be fatal")
	}
}

func TestDecoder_OversizedFrameIsFatal(t *testing.T) {
	// Hand-craft a length prefix beyond the payload limit.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	dec := wire.NewDecoder(bytes.NewReader(data))

	_, err := dec.ReadChunk()
	var frameErr *wire.FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != wire.FrameErrorTooLarge {
		t.Errorf("Kind = %v, want FrameErrorTooLarge", frameErr.Kind)
	}
	if !wire.IsFatalFrameError(err) {
		t.Error("oversized frame must be fatal")
	}
}

func TestDecoder_GarbagePayloadIsDecodeError(t *testing.T) {
	// Valid length prefix, meaningless payload.
	data := []byte{0x00, 0x00, 0x00, 0x03, 0xC1, 0xC1, 0xC1}
	dec := wire.NewDecoder(bytes.NewReader(data))

	_, err := dec.ReadChunk()
	var frameErr *wire.FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != wire.FrameErrorDecode {
		t.Errorf("Kind = %v, want FrameErrorDecode", frameErr.Kind)
	}
	if wire.IsFatalFrameError(err) {
		t.Error("decode errors are not fatal framing errors")
	}
}

func TestSink_DeliversFrames(t *testing.T) {
	var buf bytes.Buffer
	var s sink.Sink = wire.NewSink(&buf)

	if err := s.WriteChunk(t.Context(), testChunk(1, 2)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(t.Context(), testChunk(2, 2)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	dec := wire.NewDecoder(&buf)
	for i := 1; i <= 2; i++ {
		msg, err := dec.ReadChunk()
		if err != nil {
			t.Fatalf("ReadChunk %d failed: %v", i, err)
		}
		if msg.Header.ChunkIndex != i {
			t.Errorf("chunk_index = %d, want %d", msg.Header.ChunkIndex, i)
		}
	}
}
