// Package tx error types.
package tx

import "fmt"

// DecodeError is returned when raw transaction bytes cannot be parsed.
//
// Field names the part of the encoding that failed; Cause holds the
// underlying read error when one exists.
type DecodeError struct {
	Field   string // Encoding field that failed (e.g. "version", "sequence")
	Message string // Human-readable description for structural failures
	Cause   error  // Underlying error (if any)
}

func (e *DecodeError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("decode %s: %s: %v", e.Field, e.Message, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("decode %s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("decode %s: %v", e.Field, e.Cause)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
