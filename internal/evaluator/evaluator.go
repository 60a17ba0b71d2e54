// Package evaluator tree-walks a compiled ast.Block against an
// ExecutionScope, producing field assignments and diagnostic messages
// under the budget controller's supervision.
package evaluator

import (
	"github.com/yang-sanmu/EasyExpression/internal/ast"
	"github.com/yang-sanmu/EasyExpression/internal/budget"
	"github.com/yang-sanmu/EasyExpression/internal/errs"
)

// Signal is the tri-state control-flow result of executing a statement or
// block: None (fall through), Return, or ReturnLocal. Representing flow
// control as an explicit enum (rather than panics/exceptions) keeps
// short-circuit and local/return semantics uniform with ordinary error
// propagation.
type Signal int

const (
	SignalNone Signal = iota
	SignalReturn
	SignalReturnLocal
)

// Message is one diagnostic emitted by Msg/Assert.
type Message struct {
	Level  MsgLevel
	Text   string
	Line   int
	Column int
}

// MsgLevel mirrors ast.MsgLevel without importing the public package
// (avoiding an import cycle); Run translates ast.MsgLevel into this type.
type MsgLevel int

const (
	LevelInfo MsgLevel = iota
	LevelWarn
	LevelError
)

// Host supplies every root-package collaborator the evaluator needs:
// value construction/inspection, conversion, function resolution, and
// option lookups. The root package implements Host so internal/evaluator
// never imports it.
type Host interface {
	// Value inspection
	Kind(v interface{}) int // returns a Host-defined kind tag
	IsNull(v interface{}) bool

	// Value construction
	Null() interface{}
	Bool(b bool) interface{}
	NumberFromInt(i int64) interface{}
	Now() interface{}

	AsBool(v interface{}) bool

	// Arithmetic/compare, returning an engine error on failure
	Add(a, b interface{}, line, col int) (interface{}, error)
	Sub(a, b interface{}, line, col int) (interface{}, error)
	Mul(a, b interface{}, line, col int) (interface{}, error)
	Div(a, b interface{}, line, col int) (interface{}, error)
	Mod(a, b interface{}, line, col int) (interface{}, error)
	Neg(a interface{}, line, col int) (interface{}, error)
	Compare(op ast.BinaryOp, a, b interface{}, line, col int) (interface{}, error)
	Equal(op ast.BinaryOp, a, b interface{}, line, col int) (interface{}, error)

	// Fields
	ReadField(name, typeHint string, line, col int) (interface{}, error)
	WriteField(name, typeHint string, v interface{}, line, col int) (interface{}, error)
	FieldExists(name string) bool

	// Functions
	CallFunction(name string, args []interface{}, line, col int) (interface{}, error)

	// Literals
	LiteralValue(lit ast.LiteralValue, line, col int) (interface{}, error)
}

// Evaluator executes one compiled Block against one Host-managed scope.
type Evaluator struct {
	host     Host
	budget   *budget.Controller
	depth    int
	Messages []Message
	lastPos  ast.Pos
}

// New creates an Evaluator bound to host and budget limits.
func New(host Host, limits budget.Limits) *Evaluator {
	return &Evaluator{host: host, budget: budget.New(limits)}
}

// Run executes block at the top level (not inside a Local), returning the
// terminating Signal (always SignalNone or SignalReturn at top level,
// since a bare ReturnLocal outside Local behaves as Return).
func (e *Evaluator) Run(block *ast.Block) (Signal, error) {
	if block != nil {
		e.lastPos = block.Pos
	}
	return e.execBlock(block, false)
}

// LastPos reports the position of the most recently entered statement,
// used by the facade to populate ExecutionResult.EndLine/EndColumn.
func (e *Evaluator) LastPos() ast.Pos { return e.lastPos }

func (e *Evaluator) enterStmt(line, col int) error {
	return e.budget.Enter(0, line, col)
}

func (e *Evaluator) enterExpr(line, col int) error {
	e.depth++
	defer func() { e.depth-- }()
	return e.budget.Enter(e.depth, line, col)
}

func (e *Evaluator) execBlock(block *ast.Block, insideLocal bool) (Signal, error) {
	if block == nil {
		return SignalNone, nil
	}
	for _, stmt := range block.Statements {
		sig, err := e.execStmt(stmt, insideLocal)
		if err != nil {
			return SignalNone, err
		}
		if sig != SignalNone {
			return sig, nil
		}
	}
	return SignalNone, nil
}

func (e *Evaluator) execStmt(stmt ast.Stmt, insideLocal bool) (Signal, error) {
	pos := stmt.Position()
	e.lastPos = pos
	if err := e.enterStmt(pos.Line, pos.Column); err != nil {
		return SignalNone, err
	}

	switch n := stmt.(type) {
	case *ast.Set:
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return SignalNone, err
		}
		if _, err := e.host.WriteField(n.FieldName, n.TypeHint, v, pos.Line, pos.Column); err != nil {
			return SignalNone, err
		}
		return SignalNone, nil

	case *ast.Msg:
		e.Messages = append(e.Messages, Message{Level: translateLevel(n.Level), Text: n.Text, Line: pos.Line, Column: pos.Column})
		return SignalNone, nil

	case *ast.Return:
		if n.Kind == ast.KindReturnLocal && insideLocal {
			return SignalReturnLocal, nil
		}
		return SignalReturn, nil

	case *ast.Assert:
		cond, err := e.evalExpr(n.Cond)
		if err != nil {
			return SignalNone, err
		}
		if !e.host.IsNull(cond) && e.host.Kind(cond) == kindBool && e.host.AsBool(cond) {
			return SignalNone, nil
		}
		if e.host.Kind(cond) != kindBool {
			return SignalNone, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "assert condition must be Boolean")
		}
		e.Messages = append(e.Messages, Message{Level: translateLevel(n.Level), Text: n.Message, Line: pos.Line, Column: pos.Column})
		switch n.Action {
		case ast.ActionNone:
			return SignalNone, nil
		case ast.ActionReturn:
			return SignalReturn, nil
		case ast.ActionReturnLocal:
			if insideLocal {
				return SignalReturnLocal, nil
			}
			return SignalReturn, nil
		default:
			return SignalNone, errs.New(errs.UnknownOperator, pos.Line, pos.Column, "unknown assert action")
		}

	case *ast.If:
		cond, err := e.evalExpr(n.Cond)
		if err != nil {
			return SignalNone, err
		}
		if e.host.Kind(cond) != kindBool {
			return SignalNone, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "if condition must be Boolean")
		}
		if e.host.AsBool(cond) {
			return e.execBlock(n.Then, insideLocal)
		}
		for _, ei := range n.ElseIfs {
			eiCond, err := e.evalExpr(ei.Cond)
			if err != nil {
				return SignalNone, err
			}
			if e.host.Kind(eiCond) != kindBool {
				return SignalNone, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "elseif condition must be Boolean")
			}
			if e.host.AsBool(eiCond) {
				return e.execBlock(ei.Block, insideLocal)
			}
		}
		if n.HasElse {
			return e.execBlock(n.Else, insideLocal)
		}
		return SignalNone, nil

	case *ast.Local:
		sig, err := e.execBlock(n.Body, true)
		if err != nil {
			return SignalNone, err
		}
		if sig == SignalReturnLocal {
			return SignalNone, nil
		}
		return sig, nil

	default:
		return SignalNone, errs.New(errs.SyntaxError, pos.Line, pos.Column, "unsupported statement")
	}
}

// kindBool mirrors the root package's Kind numbering for Bool; it is a
// small integer contract shared with the Host implementation so this
// package never imports the concrete Value type.
const kindBool = 1

func translateLevel(l ast.MsgLevel) MsgLevel {
	switch l {
	case ast.LevelWarn:
		return LevelWarn
	case ast.LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (e *Evaluator) evalExpr(expr ast.Expr) (interface{}, error) {
	pos := expr.Position()
	if err := e.enterExpr(pos.Line, pos.Column); err != nil {
		return nil, err
	}

	switch n := expr.(type) {
	case *ast.Literal:
		return e.host.LiteralValue(n.Value, pos.Line, pos.Column)

	case *ast.Field:
		return e.host.ReadField(n.Name, n.TypeHint, pos.Line, pos.Column)

	case *ast.Now:
		return e.host.Now(), nil

	case *ast.Unary:
		inner, err := e.evalExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ast.Neg:
			return e.host.Neg(inner, pos.Line, pos.Column)
		case ast.Not:
			if e.host.Kind(inner) != kindBool {
				return nil, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "! requires a Boolean operand")
			}
			return e.host.Bool(!e.host.AsBool(inner)), nil
		}
		return nil, errs.New(errs.UnknownOperator, pos.Line, pos.Column, "unknown unary operator")

	case *ast.Binary:
		return e.evalBinary(n)

	case *ast.Call:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			v, err := e.evalExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return e.host.CallFunction(n.Name, args, pos.Line, pos.Column)

	default:
		return nil, errs.New(errs.SyntaxError, pos.Line, pos.Column, "unsupported expression")
	}
}

func (e *Evaluator) evalBinary(n *ast.Binary) (interface{}, error) {
	pos := n.Position()

	// Short-circuit operators evaluate the right side only when needed.
	if n.Op == ast.And || n.Op == ast.Or {
		left, err := e.evalExpr(n.Left)
		if err != nil {
			return nil, err
		}
		if e.host.Kind(left) != kindBool {
			return nil, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "left operand must be Boolean")
		}
		lb := e.host.AsBool(left)
		if n.Op == ast.And && !lb {
			return e.host.Bool(false), nil
		}
		if n.Op == ast.Or && lb {
			return e.host.Bool(true), nil
		}
		right, err := e.evalExpr(n.Right)
		if err != nil {
			return nil, err
		}
		if e.host.Kind(right) != kindBool {
			return nil, errs.New(errs.TypeMismatch, pos.Line, pos.Column, "right operand must be Boolean")
		}
		return right, nil
	}

	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.Add:
		return e.host.Add(left, right, pos.Line, pos.Column)
	case ast.Sub:
		return e.host.Sub(left, right, pos.Line, pos.Column)
	case ast.Mul:
		return e.host.Mul(left, right, pos.Line, pos.Column)
	case ast.Div:
		return e.host.Div(left, right, pos.Line, pos.Column)
	case ast.Mod:
		return e.host.Mod(left, right, pos.Line, pos.Column)
	case ast.Gt, ast.Lt, ast.Ge, ast.Le:
		return e.host.Compare(n.Op, left, right, pos.Line, pos.Column)
	case ast.Eq, ast.Ne:
		return e.host.Equal(n.Op, left, right, pos.Line, pos.Column)
	}
	return nil, errs.New(errs.UnknownOperator, pos.Line, pos.Column, "unknown binary operator")
}

// Visits reports the evaluator's budget visit count, for diagnostics.
func (e *Evaluator) Visits() int { return e.budget.Visits() }
