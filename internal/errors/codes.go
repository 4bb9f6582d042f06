// Package errors defines the stable reason codes surfaced by habla services.
//
// Domain-logic functions (scoring, spaced repetition, window matching) are
// total over their documented inputs and never produce these; only the
// orchestration layers do, and always with a specific code rather than a
// generic failure.
package errors

import (
	"fmt"
)

// Code identifies a caller-visible failure condition.
type Code string

const (
	// CodeNotFound indicates the referenced document does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeFailedPrecondition indicates the document exists but is in the
	// wrong state for the requested operation (e.g. session not active).
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	// CodeIntegrityMismatch indicates client-reported data disagrees with
	// server-stored state. Rejected outright, no partial acceptance.
	CodeIntegrityMismatch Code = "INTEGRITY_MISMATCH"
	// CodeEvaluationFailed indicates the upstream AI evaluation returned a
	// non-success status or an unparseable response.
	CodeEvaluationFailed Code = "EVALUATION_FAILED"
	// CodeInvalidArgument indicates a domain-invariant violation in input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeUnavailable indicates a dependency (store, push transport) failed.
	CodeUnavailable Code = "UNAVAILABLE"
)

// Error is a structured error carrying a stable reason code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound creates a NOT_FOUND error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// FailedPrecondition creates a FAILED_PRECONDITION error.
func FailedPrecondition(format string, args ...any) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// IntegrityMismatch creates an INTEGRITY_MISMATCH error.
func IntegrityMismatch(format string, args ...any) *Error {
	return &Error{Code: CodeIntegrityMismatch, Message: fmt.Sprintf(format, args...)}
}

// EvaluationFailed creates an EVALUATION_FAILED error wrapping the upstream cause.
func EvaluationFailed(msg string, cause error) *Error {
	return &Error{Code: CodeEvaluationFailed, Message: msg, Cause: cause}
}

// InvalidArgument creates an INVALID_ARGUMENT error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Unavailable creates an UNAVAILABLE error wrapping the dependency failure.
func Unavailable(msg string, cause error) *Error {
	return &Error{Code: CodeUnavailable, Message: msg, Cause: cause}
}

// IsCode reports whether err carries the given reason code.
func IsCode(err error, code Code) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the reason code from err.
// Returns the provided default code if the error is not an *Error.
func CodeOf(err error, def Code) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return def
}
