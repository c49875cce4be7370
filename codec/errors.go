package codec

import (
	"errors"
	"fmt"

	"github.com/draftyhq/chunkstream/types"
)

// EmitErrorKind classifies emission failures.
type EmitErrorKind int

const (
	// EmitErrorMalformedEnvelope indicates the envelope's results
	// container is not a sequence (or the envelope is missing entirely).
	EmitErrorMalformedEnvelope EmitErrorKind = iota
	// EmitErrorUnsupportedField indicates a field value that is neither
	// a scalar nor a finite nested sequence of scalars.
	EmitErrorUnsupportedField
)

// EmitError represents a fatal emission failure. Both kinds are
// fail-fast: no chunk message is handed to the sink.
type EmitError struct {
	Kind EmitErrorKind
	// Update, Group, and Key locate the offending field for
	// EmitErrorUnsupportedField. Update is -1 when not field-scoped.
	Update int
	Group  types.Group
	Key    string
	Msg    string
	Err    error
}

func (e *EmitError) Error() string {
	msg := e.Msg
	if e.Kind == EmitErrorUnsupportedField {
		msg = fmt.Sprintf("unsupported field type at results[%d].%s[%q]", e.Update, e.Group, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

// IsMalformedEnvelope reports whether err is a malformed-envelope failure.
func IsMalformedEnvelope(err error) bool {
	var emitErr *EmitError
	return errors.As(err, &emitErr) && emitErr.Kind == EmitErrorMalformedEnvelope
}

// IsUnsupportedField reports whether err is an unsupported-field failure.
func IsUnsupportedField(err error) bool {
	var emitErr *EmitError
	return errors.As(err, &emitErr) && emitErr.Kind == EmitErrorUnsupportedField
}
