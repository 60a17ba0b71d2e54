// Package errs defines the engine-wide error taxonomy (spec §7) shared by
// the lexer, parser, evaluator, and budget controller. The public facade
// package re-exports Code under its own name so host programs never need
// to import this internal package directly.
package errs

import "fmt"

// Code is a stable error taxonomy identifier.
type Code int

const (
	// Parse errors
	UnexpectedToken Code = iota
	UnterminatedString
	InvalidNumber
	InvalidIdentifier
	UnexpectedEndOfFile
	SyntaxError
	InvalidFieldName

	// Runtime errors
	UnknownField
	TypeMismatch
	DivideByZero
	ModuloByZero
	UnknownFunction
	InvalidFunctionArguments
	ConversionError
	AssertionFailed
	UnknownOperator
	NullReference

	// Limit errors
	MaxNodesExceeded
	MaxVisitsExceeded
	MaxDepthExceeded
	ExecutionTimeout
	ScriptTooLarge
)

var names = [...]string{
	"UnexpectedToken",
	"UnterminatedString",
	"InvalidNumber",
	"InvalidIdentifier",
	"UnexpectedEndOfFile",
	"SyntaxError",
	"InvalidFieldName",
	"UnknownField",
	"TypeMismatch",
	"DivideByZero",
	"ModuloByZero",
	"UnknownFunction",
	"InvalidFunctionArguments",
	"ConversionError",
	"AssertionFailed",
	"UnknownOperator",
	"NullReference",
	"MaxNodesExceeded",
	"MaxVisitsExceeded",
	"MaxDepthExceeded",
	"ExecutionTimeout",
	"ScriptTooLarge",
}

func (c Code) String() string {
	if int(c) >= 0 && int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is an engine error with source position.
type Error struct {
	Code    Code
	Message string
	Line    int
	Column  int
	// Cause, when set, is the underlying error this one wraps (e.g. a
	// converter failure), kept for %+v-style debugging via pkg/errors.
	Cause error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s at %d:%d", e.Code, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s (at %d:%d)", e.Code, e.Message, e.Line, e.Column)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error at the given position.
func New(code Code, line, column int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

// Wrap builds an Error at the given position, carrying cause.
func Wrap(code Code, line, column int, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Line: line, Column: column, Cause: cause}
}
