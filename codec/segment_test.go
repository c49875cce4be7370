package codec

import (
	"encoding/json"
	"reflect"
	"testing"
)

// intSeq returns [0, 1, ..., n-1] as a canonical sequence.
func intSeq(n int) []any {
	s := make([]any, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// concat flattens a plan's segments back into one sequence.
func concat(plan *SegmentPlan) []any {
	var out []any
	for _, seg := range plan.Segments {
		out = append(out, seg.Elems...)
	}
	return out
}

func TestPlan_NoSplitWhenWithinBudget(t *testing.T) {
	arr := intSeq(10) // "[0,1,2,3,4,5,6,7,8,9]" = 21 bytes
	plan, err := Plan(arr, 21)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan != nil {
		t.Errorf("expected no split at exact budget, got %d segments", len(plan.Segments))
	}
}

func TestPlan_SplitJustOverBudget(t *testing.T) {
	arr := intSeq(10)
	plan, err := Plan(arr, 20)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan == nil {
		t.Fatal("expected a split plan")
	}
	if len(plan.Segments) < 2 {
		t.Errorf("expected at least 2 segments, got %d", len(plan.Segments))
	}
	if got := concat(plan); !reflect.DeepEqual(got, arr) {
		t.Errorf("concatenated segments = %v, want %v", got, arr)
	}
}

func TestPlan_SegmentsRespectBudget(t *testing.T) {
	arr := intSeq(200)
	budget := 50
	plan, err := Plan(arr, budget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan == nil {
		t.Fatal("expected a split plan")
	}

	for i, seg := range plan.Segments {
		if seg.Oversized {
			t.Errorf("segment %d unexpectedly oversized", i)
		}
		if seg.Bytes > budget {
			t.Errorf("segment %d is %d bytes, budget %d", i, seg.Bytes, budget)
		}
		// Bytes must match the actual compact JSON encoding.
		data, err := json.Marshal(seg.Elems)
		if err != nil {
			t.Fatalf("marshal segment %d: %v", i, err)
		}
		if seg.Bytes != len(data) {
			t.Errorf("segment %d reports %d bytes, encoding is %d", i, seg.Bytes, len(data))
		}
	}
	if got := concat(plan); !reflect.DeepEqual(got, arr) {
		t.Error("concatenated segments do not reproduce the input")
	}
}

func TestPlan_OversizedSingleElement(t *testing.T) {
	// One string element whose encoding alone exceeds the budget.
	arr := []any{1, "a long opaque string value", 2}
	plan, err := Plan(arr, 10)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan == nil {
		t.Fatal("expected a split plan")
	}

	var oversized int
	for _, seg := range plan.Segments {
		if seg.Oversized {
			oversized++
			if len(seg.Elems) != 1 {
				t.Errorf("oversized segment has %d elements, want 1", len(seg.Elems))
			}
		}
	}
	if oversized != 1 {
		t.Errorf("expected exactly 1 oversized segment, got %d", oversized)
	}
	if got := concat(plan); !reflect.DeepEqual(got, arr) {
		t.Error("concatenated segments do not reproduce the input")
	}
}

func TestPlan_TinyBudgetEveryElementAlone(t *testing.T) {
	arr := []any{1, 2, 3}
	plan, err := Plan(arr, 1)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan == nil {
		t.Fatal("expected a split plan")
	}
	if len(plan.Segments) != 3 {
		t.Fatalf("expected 3 single-element segments, got %d", len(plan.Segments))
	}
	for i, seg := range plan.Segments {
		if !seg.Oversized {
			t.Errorf("segment %d should be oversized under budget 1", i)
		}
	}
}

func TestPlan_EmptyArrayNeverSplits(t *testing.T) {
	plan, err := Plan([]any{}, 1)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan != nil {
		t.Error("empty array should never need splitting")
	}
}

func TestPlan_ScalarsNeverSplit(t *testing.T) {
	scalars := []any{3.14, true, "a string far longer than any reasonable byte budget would allow"}
	for _, v := range scalars {
		plan, err := Plan(v, 1)
		if err != nil {
			t.Fatalf("Plan(%T) failed: %v", v, err)
		}
		if plan != nil {
			t.Errorf("scalar %T should not be split", v)
		}
	}
}

func TestPlan_NestedRowsStayIntact(t *testing.T) {
	// 2D array: rows are top-level elements and must never be broken up.
	rows := make([]any, 20)
	for i := range rows {
		rows[i] = intSeq(10)
	}
	plan, err := Plan(rows, 40)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan == nil {
		t.Fatal("expected a split plan")
	}
	for i, seg := range plan.Segments {
		for j, elem := range seg.Elems {
			if _, ok := elem.([]any); !ok {
				t.Errorf("segment %d element %d is %T, rows must stay intact", i, j, elem)
			}
		}
	}
	if got := concat(plan); !reflect.DeepEqual(got, rows) {
		t.Error("concatenated segments do not reproduce the rows")
	}
}

func TestPlan_Deterministic(t *testing.T) {
	arr := intSeq(100)
	first, err := Plan(arr, 37)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	second, err := Plan(arr, 37)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input and budget produced different plans")
	}
}

func TestPlan_RejectsNonCanonicalValues(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"map value", map[string]any{"a": 1}},
		{"nested map", []any{1, map[string]any{"a": 1}}},
		{"nil element", []any{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Plan(tt.v, 100); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
