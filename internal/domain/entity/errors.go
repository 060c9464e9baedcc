package entity

import (
	"errors"
	"fmt"
)

// Domain sentinel errors. Repositories and usecases wrap these so
// handlers can map them to HTTP statuses with errors.Is.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrValidationFailed = errors.New("validation failed")

	// ErrConflict marks a state transition that lost a concurrent race.
	ErrConflict = errors.New("state conflict")
)

// ValidationError names the field that failed, so API clients can point
// at the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
