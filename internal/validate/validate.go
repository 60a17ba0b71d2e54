// Package validate implements the read-only validation analyzer: it
// walks a compiled Block collecting statistics without evaluating any
// code (spec §6's "validation analyzer" boundary). It walks the tree with
// its own traversal, which tracks nesting depth; only TotalNodes comes
// from internal/ast.CountNodes, the count the facade's precompile size
// check also uses.
package validate

import (
	"fmt"
	"sort"

	"github.com/yang-sanmu/EasyExpression/internal/ast"
)

// FieldReference is one occurrence of a field read, with its position.
type FieldReference struct {
	Name   string
	Line   int
	Column int
}

// Warning is a non-fatal issue surfaced by Validate but not Execute —
// currently only "call to an unregistered function".
type Warning struct {
	Code    string
	Message string
	Line    int
	Column  int
}

// Complexity summarizes the shape of a script's expression tree.
type Complexity struct {
	ArithmeticOps       int
	ComparisonOps       int
	LogicalOps          int
	FunctionCalls       int
	MaxNestedBlockDepth int
	ConditionalCount    int
	TotalExpressions    int
}

// Result is the analyzer's output.
type Result struct {
	TotalNodes        int
	Complexity        Complexity
	UsedFunctions     []string
	ReferencedFields  []FieldReference
	DeclaredVariables []string
	Warnings          []Warning
}

// Input configures one Analyze call. KnownFunction lets the analyzer
// flag calls to names the engine's Function registry does not recognize
// without importing the root package's FunctionRegistry type directly
// (the same Host-style indirection internal/evaluator uses).
type Input struct {
	Block         *ast.Block
	KnownFunction func(name string) bool
}

// Analyze walks in.Block once, producing a Result. It never evaluates
// any expression.
func Analyze(in Input) Result {
	a := &analyzer{known: in.KnownFunction, usedFns: map[string]bool{}, declared: map[string]bool{}}
	a.walkBlock(in.Block, 0)

	res := Result{
		TotalNodes: ast.CountNodes(in.Block),
		Complexity: a.complexity,
	}
	res.Complexity.MaxNestedBlockDepth = a.maxDepth
	res.UsedFunctions = sortedKeys(a.usedFns)
	res.DeclaredVariables = sortedKeys(a.declared)
	res.ReferencedFields = a.fields
	res.Warnings = a.warnings
	return res
}

type analyzer struct {
	known      func(name string) bool
	complexity Complexity
	maxDepth   int
	usedFns    map[string]bool
	declared   map[string]bool
	fields     []FieldReference
	warnings   []Warning
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (a *analyzer) walkBlock(b *ast.Block, depth int) {
	if b == nil {
		return
	}
	if depth > a.maxDepth {
		a.maxDepth = depth
	}
	for _, s := range b.Statements {
		a.walkStmt(s, depth)
	}
}

func (a *analyzer) walkStmt(s ast.Stmt, depth int) {
	switch n := s.(type) {
	case *ast.Set:
		a.declared[n.FieldName] = true
		a.walkExpr(n.Value)
	case *ast.Msg:
		// no child expressions
	case *ast.Return:
		// leaf
	case *ast.Assert:
		a.walkExpr(n.Cond)
	case *ast.If:
		a.complexity.ConditionalCount++
		a.walkExpr(n.Cond)
		a.walkBlock(n.Then, depth+1)
		for _, ei := range n.ElseIfs {
			a.complexity.ConditionalCount++
			a.walkExpr(ei.Cond)
			a.walkBlock(ei.Block, depth+1)
		}
		if n.Else != nil {
			a.walkBlock(n.Else, depth+1)
		}
	case *ast.Local:
		a.walkBlock(n.Body, depth+1)
	}
}

func (a *analyzer) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	a.complexity.TotalExpressions++

	switch n := e.(type) {
	case *ast.Literal, *ast.Now:
		// leaves
	case *ast.Field:
		pos := n.Position()
		a.fields = append(a.fields, FieldReference{Name: n.Name, Line: pos.Line, Column: pos.Column})
	case *ast.Unary:
		a.walkExpr(n.Inner)
	case *ast.Binary:
		a.classifyBinary(n.Op)
		a.walkExpr(n.Left)
		a.walkExpr(n.Right)
	case *ast.Call:
		a.complexity.FunctionCalls++
		a.usedFns[n.Name] = true
		if a.known != nil && !a.known(n.Name) {
			pos := n.Position()
			a.warnings = append(a.warnings, Warning{
				Code:    "PotentialIssue",
				Message: fmt.Sprintf("call to unregistered function %q", n.Name),
				Line:    pos.Line,
				Column:  pos.Column,
			})
		}
		for _, arg := range n.Args {
			a.walkExpr(arg)
		}
	}
}

func (a *analyzer) classifyBinary(op ast.BinaryOp) {
	switch op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		a.complexity.ArithmeticOps++
	case ast.Gt, ast.Lt, ast.Ge, ast.Le, ast.Eq, ast.Ne:
		a.complexity.ComparisonOps++
	case ast.And, ast.Or:
		a.complexity.LogicalOps++
	}
}
