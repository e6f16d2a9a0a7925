package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Sync cycle errors. Each one aborts the current cycle only; the next tick retries.
var (
	// ErrNetwork indicates a transport, timeout or upstream status failure talking to the rates feed.
	ErrNetwork = errors.New("upstream network error")

	// ErrDecode indicates the upstream payload was not in the expected shape.
	ErrDecode = errors.New("upstream decode error")

	// ErrFormat indicates a date or decimal field inside a well-shaped payload could not be parsed.
	ErrFormat = errors.New("format error")

	// ErrPersistence indicates the store rejected a lookup or the cycle commit.
	ErrPersistence = errors.New("persistence error")
)

// AppError carries an HTTP-ish status code alongside a message and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// NewValidationError creates an AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewDuplicateError creates an AppError that matches ErrDuplicate.
func NewDuplicateError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrDuplicate)
}
