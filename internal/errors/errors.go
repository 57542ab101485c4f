// Package errors defines AppError, the coded error shared by the store, service and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable category carried by an AppError.
type ErrorCode string

// Codes understood by the HTTP layer and the metric classifier.
const (
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeConflict    ErrorCode = "conflict"
	ErrCodeValidation  ErrorCode = "validation"
	ErrCodeUnavailable ErrorCode = "unavailable"
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeCanceled    ErrorCode = "canceled"
)

// Transient reports whether a retry of the same operation could succeed.
func (c ErrorCode) Transient() bool {
	return c == ErrCodeUnavailable || c == ErrCodeTimeout
}

// AppError pairs a code and client-safe message with the underlying cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending column or input, when known.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New returns an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches code and message to err. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsConflict reports whether err carries ErrCodeConflict.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConflict }

// IsValidation reports whether err carries ErrCodeValidation.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsUnavailable reports whether err carries ErrCodeUnavailable.
func IsUnavailable(err error) bool { return CodeOf(err) == ErrCodeUnavailable }

// IsTimeout reports whether err carries ErrCodeTimeout.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }
