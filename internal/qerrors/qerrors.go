// Package qerrors defines the structured error type used at component
// boundaries. Codes keep handler/CLI mapping trivial (invalid parameters
// become 400s, missing resources 404s) without string matching.
package qerrors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeInvalidParam = "ERR_INVALID_PARAM"
	CodeNotFound     = "ERR_NOT_FOUND"
	CodeUnauthorized = "ERR_UNAUTHORIZED"
	CodeInternal     = "ERR_INTERNAL"
)

// Error is the structured error type for qanoon.
type Error struct {
	// Code is the stable machine-readable code.
	Code string

	// Message is the human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error-chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so errors.Is works with sentinel instances.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and formatted message.
func New(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping cause. Returns nil for a nil cause.
func Wrap(code string, cause error, format string, args ...any) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// InvalidParam creates a caller-input validation error. The ranking
// orchestrator rejects bad parameters with this code before any scoring
// work begins.
func InvalidParam(format string, args ...any) *Error {
	return New(CodeInvalidParam, format, args...)
}

// NotFound creates a missing-resource error.
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

// Internal creates an internal error wrapping cause.
func Internal(cause error, format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
