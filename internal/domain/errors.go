package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by callers that need absence as an error, e.g. the HTTP adapter.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by stores when a create collides with an existing identifier.
	ErrConflict = errors.New("record already exists")
)

// ValidationError reports the field that rejected an operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
