package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("domain: not found")
	ErrConflict   = errors.New("domain: conflict")
	ErrValidation = errors.New("domain: validation failed")
)

// ValidationError reports a single rejected input field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
