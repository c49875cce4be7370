package types

import (
	"encoding/json"
	"fmt"
)

// ValidateValue checks that v is a canonical field value: a numeric scalar,
// a bool, a string or byte slice (both opaque, never split), or a finite
// nested []any of canonical values. Anything else must be converted by an
// array-normalization layer before it reaches the codec.
//
// JSON-decoded envelopes satisfy this contract naturally: objects decode to
// map[string]any and are rejected here, everything else decodes to float64,
// string, bool, or []any.
func ValidateValue(v any) error {
	switch x := v.(type) {
	case bool, string, []byte, json.Number:
		return nil
	case int, int8, int16, int32, int64:
		return nil
	case uint, uint8, uint16, uint32, uint64:
		return nil
	case float32, float64:
		return nil
	case []any:
		for i, elem := range x {
			if err := ValidateValue(elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("null is not a canonical value")
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}
