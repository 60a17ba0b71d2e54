package easyexpr

import "github.com/yang-sanmu/EasyExpression/internal/errs"

// Code is a stable error taxonomy identifier (§7). It re-exports
// internal/errs.Code so host programs never need to import the internal
// package directly.
type Code = errs.Code

const (
	UnexpectedToken      = errs.UnexpectedToken
	UnterminatedString   = errs.UnterminatedString
	InvalidNumber        = errs.InvalidNumber
	InvalidIdentifier    = errs.InvalidIdentifier
	UnexpectedEndOfFile  = errs.UnexpectedEndOfFile
	SyntaxError          = errs.SyntaxError
	InvalidFieldName     = errs.InvalidFieldName
	UnknownField         = errs.UnknownField
	TypeMismatch         = errs.TypeMismatch
	DivideByZero         = errs.DivideByZero
	ModuloByZero         = errs.ModuloByZero
	UnknownFunction      = errs.UnknownFunction
	InvalidFunctionArguments = errs.InvalidFunctionArguments
	ConversionError      = errs.ConversionError
	AssertionFailed      = errs.AssertionFailed
	UnknownOperator      = errs.UnknownOperator
	NullReference        = errs.NullReference
	MaxNodesExceeded     = errs.MaxNodesExceeded
	MaxVisitsExceeded    = errs.MaxVisitsExceeded
	MaxDepthExceeded     = errs.MaxDepthExceeded
	ExecutionTimeout     = errs.ExecutionTimeout
	ScriptTooLarge       = errs.ScriptTooLarge
)

// EngineError is the public error type returned from Compile/Execute
// failures; it carries a stable Code plus source position.
type EngineError = errs.Error

// codeAndPosition extracts (code, line, column) from err if it is an
// *EngineError (possibly wrapped via github.com/pkg/errors), returning
// ok=false otherwise.
func codeAndPosition(err error) (code Code, line, column int, ok bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if ee, isEngine := err.(*EngineError); isEngine {
			return ee.Code, ee.Line, ee.Column, true
		}
		c, isCauser := err.(causer)
		if !isCauser {
			break
		}
		err = c.Cause()
	}
	return 0, 0, 0, false
}
