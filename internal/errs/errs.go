// Package errs provides structured error types for the plat-legend service.
//
// Error codes let the API, the SSE handlers, and the log output agree on what
// went wrong without string matching. The two codes that matter most are
// ErrCodeProviderDefect and ErrCodeRenderFailure: both mark per-layer or
// per-entry faults that must be reported but must never abort the rest of a
// legend build.
//
// Usage:
//
//	err := errs.New(errs.ErrCodeInvalidStyle, "bad fill color %q", fill)
//	if errs.Is(err, errs.ErrCodeInvalidStyle) {
//	    // handle style validation error
//	}
//
//	// Wrap existing errors
//	err := errs.Wrap(errs.ErrCodeProviderDefect, cause, "layer %q", id)
package errs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Per-frame legend build faults
	ErrCodeProviderDefect Code = "PROVIDER_DEFECT"
	ErrCodeRenderFailure  Code = "RENDER_FAILURE"

	// Input validation
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"

	// Resource lookup
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeLayerNotFound   Code = "LAYER_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Everything else
	ErrCodeUnavailable Code = "UNAVAILABLE"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
