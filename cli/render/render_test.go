package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/draftyhq/chunkstream/cli/reader"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat_InvalidErrorMessage(t *testing.T) {
	_, err := ParseFormat("xml")
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error message should mention valid formats, got: %v", err)
	}
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatJSON, false, &buf)

	data := map[string]string{"drafty_id": "stream-1"}
	if err := r.Render(data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"drafty_id"`) || !strings.Contains(got, `"stream-1"`) {
		t.Errorf("JSON output missing expected content: %s", got)
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatYAML, false, &buf)

	data := map[string]string{"command": "render"}
	if err := r.Render(data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "command:") || !strings.Contains(got, "render") {
		t.Errorf("YAML output missing expected content: %s", got)
	}
}

func TestRenderer_Table_StreamStats(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	stats := &reader.StreamStats{
		DraftyID:    "stream-1",
		Command:     "render",
		Chunks:      3,
		TotalBytes:  512,
		SplitFields: []string{"0/data/x"},
	}
	if err := r.Render(stats); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "drafty_id:") || !strings.Contains(got, "stream-1") {
		t.Errorf("Table output missing drafty_id: %s", got)
	}
	if !strings.Contains(got, "chunks:") || !strings.Contains(got, "3") {
		t.Errorf("Table output missing chunks: %s", got)
	}
	if !strings.Contains(got, "0/data/x") {
		t.Errorf("Table output missing split fields: %s", got)
	}
}

func TestRenderer_Table_ChunkInfoSlice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	data := []reader.ChunkInfo{
		{Index: 1, Count: 2, Bytes: 120, Updates: 1},
		{Index: 2, Count: 2, Bytes: 80, Updates: 1},
	}

	if err := r.Render(data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "index") || !strings.Contains(got, "bytes") {
		t.Errorf("Table output missing headers: %s", got)
	}
	if !strings.Contains(got, "120") || !strings.Contains(got, "80") {
		t.Errorf("Table output missing data rows: %s", got)
	}
}

func TestRenderer_Table_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	if err := r.Render([]reader.ChunkInfo{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "(no chunks)") {
		t.Errorf("Empty slice should show '(no chunks)', got: %s", got)
	}
}

func TestRenderer_NoColor_DoesNotAffectJSON(t *testing.T) {
	var bufColor, bufNoColor bytes.Buffer

	rColor := NewRendererWithWriter(FormatJSON, false, &bufColor)
	rNoColor := NewRendererWithWriter(FormatJSON, true, &bufNoColor)

	data := map[string]int{"chunks": 2}

	if err := rColor.Render(data); err != nil {
		t.Fatalf("Render with color failed: %v", err)
	}
	if err := rNoColor.Render(data); err != nil {
		t.Fatalf("Render without color failed: %v", err)
	}

	if bufColor.String() != bufNoColor.String() {
		t.Errorf("--no-color should not affect JSON output")
	}
}
