// Package fault defines the error taxonomy shared by the translation and
// navigation packages.
//
// Two kinds of failure leave this module as errors:
//   - Defects: the engine handed us something outside the coverage of the
//     converter or materializer (unknown node kind, literal category, type,
//     syntax, or a malformed filter-axis type). Defects are returned to the
//     immediate caller as-is and never degrade to empty or default output.
//   - Usage errors: a position index out of range, or a call made after the
//     owning statement was closed.
//
// Lookup misses are not errors. An unresolved member yields an empty result.
package fault

import (
	"errors"
	"fmt"
)

// Error is a structured failure raised by this module.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains additional context (node type, index, bounds).
	Details map[string]string
}

// Code categorizes errors.
type Code string

const (
	// ErrCodeUnknownNode indicates a native expression kind with no handler.
	ErrCodeUnknownNode Code = "UNKNOWN_NODE"

	// ErrCodeUnknownLiteral indicates a literal category with no handler.
	ErrCodeUnknownLiteral Code = "UNKNOWN_LITERAL"

	// ErrCodeUnknownType indicates a native resolved type with no mapping.
	ErrCodeUnknownType Code = "UNKNOWN_TYPE"

	// ErrCodeUnknownSyntax indicates a call syntax with no portable counterpart.
	ErrCodeUnknownSyntax Code = "UNKNOWN_SYNTAX"

	// ErrCodeUnknownAxis indicates an axis ordinal with no portable counterpart.
	ErrCodeUnknownAxis Code = "UNKNOWN_AXIS"

	// ErrCodeBadNumber indicates a numeric literal that has no exact decimal form.
	ErrCodeBadNumber Code = "BAD_NUMBER"

	// ErrCodeMalformedAxisType indicates an axis type that does not declare hierarchies.
	ErrCodeMalformedAxisType Code = "MALFORMED_AXIS_TYPE"

	// ErrCodeOutOfBounds indicates a position index outside [0, count).
	ErrCodeOutOfBounds Code = "OUT_OF_BOUNDS"

	// ErrCodeClosed indicates the owning statement is no longer available.
	ErrCodeClosed Code = "CLOSED"
)

var defectCodes = map[Code]bool{
	ErrCodeUnknownNode:       true,
	ErrCodeUnknownLiteral:    true,
	ErrCodeUnknownType:       true,
	ErrCodeUnknownSyntax:     true,
	ErrCodeUnknownAxis:       true,
	ErrCodeBadNumber:         true,
	ErrCodeMalformedAxisType: true,
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Defect creates a translation defect error.
func Defect(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UnknownNode creates a defect for a value whose dynamic type has no handler.
func UnknownNode(what string, v any) *Error {
	return &Error{
		Code:    ErrCodeUnknownNode,
		Message: fmt.Sprintf("unhandled %s: %T", what, v),
		Details: map[string]string{"type": fmt.Sprintf("%T", v)},
	}
}

// OutOfBounds creates a bounds error for index i against count.
func OutOfBounds(i, count int) *Error {
	return &Error{
		Code:    ErrCodeOutOfBounds,
		Message: fmt.Sprintf("position index %d out of range [0, %d)", i, count),
		Details: map[string]string{
			"index": fmt.Sprintf("%d", i),
			"count": fmt.Sprintf("%d", count),
		},
	}
}

// Closed creates the error returned after a statement has been closed.
func Closed(statementID string) *Error {
	return &Error{
		Code:    ErrCodeClosed,
		Message: fmt.Sprintf("statement %s is closed", statementID),
		Details: map[string]string{"statement": statementID},
	}
}

// CodeOf returns the code of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsDefect returns true if err is a translation defect.
func IsDefect(err error) bool {
	return defectCodes[CodeOf(err)]
}

// IsOutOfBounds returns true if err is a position bounds error.
func IsOutOfBounds(err error) bool {
	return CodeOf(err) == ErrCodeOutOfBounds
}

// IsClosed returns true if err reports a closed statement.
func IsClosed(err error) bool {
	return CodeOf(err) == ErrCodeClosed
}
