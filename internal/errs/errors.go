// Package errs defines the error taxonomy shared by the query expression
// engine.
//
// Every failure raised while building or compiling a query is an *Error
// carrying one of four codes:
//
//   - INVALID_ARGUMENT: malformed term or node construction
//   - INVALID_OPERATION: full-text match combined with a non-AND connector
//   - UNSUPPORTED: a statement shape the engine cannot express
//   - EMPTY_RESULT_SET: a signal that a predicate can match nothing
//
// Callers test for a category with errors.Is against the sentinels below or
// with the Is* helpers, so wrapped errors keep working.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes query engine errors.
type Code string

const (
	// CodeInvalidArgument indicates malformed term/node construction.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeInvalidOperation indicates a match expression placed where only
	// AND composition is allowed.
	CodeInvalidOperation Code = "INVALID_OPERATION"

	// CodeUnsupported indicates a statement the engine cannot execute.
	CodeUnsupported Code = "UNSUPPORTED"

	// CodeEmptyResultSet signals that a predicate is known to match nothing.
	CodeEmptyResultSet Code = "EMPTY_RESULT_SET"
)

// Error is a categorized query engine error.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed (e.g. "sphinxql.NewField").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrInvalidOperation = &Error{Code: CodeInvalidOperation}
	ErrUnsupported      = &Error{Code: CodeUnsupported}
	ErrEmptyResultSet   = &Error{Code: CodeEmptyResultSet}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Code == e.Code
}

// InvalidArgument creates an INVALID_ARGUMENT error.
func InvalidArgument(op, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation creates an INVALID_OPERATION error.
func InvalidOperation(op, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidOperation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Unsupported creates an UNSUPPORTED error.
func Unsupported(op, format string, args ...any) *Error {
	return &Error{Code: CodeUnsupported, Op: op, Message: fmt.Sprintf(format, args...)}
}

// EmptyResultSet creates the EMPTY_RESULT_SET signal.
func EmptyResultSet(op string) *Error {
	return &Error{Code: CodeEmptyResultSet, Op: op, Message: "predicate matches nothing"}
}

// CodeOf returns the category of err, or "" when err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// IsInvalidOperation returns true if err is an INVALID_OPERATION error.
func IsInvalidOperation(err error) bool {
	return CodeOf(err) == CodeInvalidOperation
}

// IsUnsupported returns true if err is an UNSUPPORTED error.
func IsUnsupported(err error) bool {
	return CodeOf(err) == CodeUnsupported
}

// IsEmptyResultSet returns true if err is the EMPTY_RESULT_SET signal.
func IsEmptyResultSet(err error) bool {
	return CodeOf(err) == CodeEmptyResultSet
}
