// Package errors defines the coded errors shared by the editor, the HTTP
// API and the CLI.
//
// An [Error] pairs a machine-readable [Code] with a message meant for
// people. The server turns codes into HTTP statuses and the CLI prints
// [UserMessage]. A [ValidationError] lists every offending node or edge of
// a rejected graph snapshot and reports [ErrCodeInvalidGraph].
//
//	err := errors.New(errors.ErrCodeInvalidAlgorithm, "unknown layout algorithm: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
//	    // 400
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidGraph, cause, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidGraph     Code = "INVALID_GRAPH"
	ErrCodeInvalidAlgorithm Code = "INVALID_ALGORITHM"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound Code = "EDGE_NOT_FOUND"

	// Conflicts
	ErrCodeConflict Code = "CONFLICT"

	// History errors
	ErrCodeNothingToUndo Code = "NOTHING_TO_UNDO"
	ErrCodeNothingToRedo Code = "NOTHING_TO_REDO"

	// Internal errors
	ErrCodeCanceled    Code = "CANCELED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" followed by the cause when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error whose cause is err.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or
// ErrCodeInvalidGraph for a *ValidationError. Uncoded errors report "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrCodeInvalidGraph
	}
	return ""
}

// UserMessage returns the message of a coded error without its code and
// cause, and the plain error text for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
