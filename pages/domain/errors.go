package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrRegionNotFound = errors.New("editable region not found")
	ErrConflict       = errors.New("file changed since it was read")
	ErrTransport      = errors.New("content api call failed")
)

// ValidationError reports content that could not be made safe. Text is the rejected input after stripping.
type ValidationError struct {
	Text   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Text == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Text)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FailureKind classifies a failed operation.
type FailureKind string

const (
	FailureInvalidInput   FailureKind = "invalid_input"
	FailureValidation     FailureKind = "validation"
	FailureNotFound       FailureKind = "not_found"
	FailureRegionNotFound FailureKind = "region_not_found"
	FailureConflict       FailureKind = "conflict"
	FailureTransport      FailureKind = "transport"
)

// KindOf maps an error onto the failure taxonomy. Unknown errors are treated as transport failures.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalidInput
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrRegionNotFound):
		return FailureRegionNotFound
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrConflict):
		return FailureConflict
	default:
		return FailureTransport
	}
}
