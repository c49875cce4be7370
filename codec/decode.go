package codec

import (
	"bytes"
	"encoding/json"

	"github.com/draftyhq/chunkstream/types"
)

// DecodeEnvelope parses a JSON widget output envelope.
//
// The results container must be a JSON array (absent and null are treated
// as empty); any other shape is a malformed envelope. This is the boundary
// where the dynamic input shape is checked; past it, the typed envelope
// cannot be malformed.
func DecodeEnvelope(data []byte) (*types.WidgetOutput, error) {
	var probe struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &EmitError{
			Kind:   EmitErrorMalformedEnvelope,
			Update: -1,
			Msg:    "invalid envelope JSON",
			Err:    err,
		}
	}

	if raw := bytes.TrimSpace(probe.Results); len(raw) > 0 {
		if raw[0] != '[' && !bytes.Equal(raw, []byte("null")) {
			return nil, &EmitError{
				Kind:   EmitErrorMalformedEnvelope,
				Update: -1,
				Msg:    "results must be a sequence",
			}
		}
	}

	var out types.WidgetOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &EmitError{
			Kind:   EmitErrorMalformedEnvelope,
			Update: -1,
			Msg:    "invalid envelope JSON",
			Err:    err,
		}
	}
	return &out, nil
}
