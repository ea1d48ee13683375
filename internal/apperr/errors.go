// Package apperr defines the error types that the HTTP layer turns into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeUpload       ErrorType = "upload_error"
	ErrorTypeInternal     ErrorType = "internal_error"
)

// AppError carries the HTTP status and the client-facing message of a failure.
type AppError struct {
	Type    ErrorType
	Message string
	Code    int
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCause attaches the underlying error for logging.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(t ErrorType, code int, message string, details []string) *AppError {
	return &AppError{Type: t, Message: message, Code: code, Details: details}
}

func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

func NewConflictError(message string, details ...string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, message, details)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return newError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return newError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

// NewUploadError reports a rejected file. Oversized files use 413, everything else 400.
func NewUploadError(message string, tooLarge bool) *AppError {
	code := http.StatusBadRequest
	if tooLarge {
		code = http.StatusRequestEntityTooLarge
	}
	return newError(ErrorTypeUpload, code, message, nil)
}

func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// As extracts an AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err, 500 for anything that is not an AppError.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
