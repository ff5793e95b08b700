package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// record (report, section entry, vehicle, user) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, malformed HH:MM time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrReorderRejected is returned when a manifest reorder is not a bijection
// onto the current vehicles. The manifest is left unchanged.
// Handlers should map this to HTTP 409 Conflict.
var ErrReorderRejected = errors.New("reorder rejected")

// ErrPersistence wraps any failure of the underlying store other than a
// missing record. The stored document is unchanged, so the caller may retry.
// Handlers should map this to HTTP 503 Service Unavailable.
var ErrPersistence = errors.New("persistence failure")

// ErrConflict is returned when a create would duplicate an existing natural key.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the authorization policy denies an action.
var ErrForbidden = errors.New("forbidden")

// FieldError is a validation failure attributed to a single input field.
// It unwraps to ErrValidation so callers can keep using errors.Is.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError builds a *FieldError for field with a human-readable message.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}
