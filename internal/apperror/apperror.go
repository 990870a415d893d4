// Package apperror defines the typed errors the service layer raises.
//
// The taxonomy is deliberately small: invalid input, not found, conflict.
// Anything else is an internal error. Services return these; the HTTP handler
// is the single place that turns error identity into a status code — no layer
// below the handler knows anything about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers check with errors.Is(), which walks the chain via
// AppError.Unwrap().
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// AppError pairs a sentinel with a human-readable message. The message is what
// ends up in the API envelope, so it should be safe to show to clients.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no entity of the given resource exists with that id.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Field:   fmt.Sprintf("%d", id),
	}
}

// ValidationFailed reports a request payload or parameter that fails a
// business rule before any persistence is attempted.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation surfaced by the persistence layer
// (duplicate username or email).
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}
