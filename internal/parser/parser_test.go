package parser

import (
	"testing"

	"github.com/matryer/is"

	"github.com/yang-sanmu/EasyExpression/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Block {
	t.Helper()
	b, err := Parse(src, true)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return b
}

func TestParseLiteralExpression(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(x, 1 + 2 * 3)`)
	is.Equal(len(b.Statements), 1)
	set, ok := b.Statements[0].(*ast.Set)
	is.True(ok)
	is.Equal(set.FieldName, "x")

	bin, ok := set.Value.(*ast.Binary)
	is.True(ok)
	is.Equal(bin.Op, ast.Add)
	rhs, ok := bin.Right.(*ast.Binary)
	is.True(ok)
	is.Equal(rhs.Op, ast.Mul)
}

func TestParsePrecedenceAndShortCircuit(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(ok, 1 < 2 && 3 > 2 || false)`)
	set := b.Statements[0].(*ast.Set)
	or, ok := set.Value.(*ast.Binary)
	is.True(ok)
	is.Equal(or.Op, ast.Or)
	and, ok := or.Left.(*ast.Binary)
	is.True(ok)
	is.Equal(and.Op, ast.And)
}

func TestParseFieldReference(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(result, [customer name])`)
	set := b.Statements[0].(*ast.Set)
	f, ok := set.Value.(*ast.Field)
	is.True(ok)
	is.Equal(f.Name, "customer name")
}

func TestParseFieldWithTypeHintTarget(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set([amount:decimal], 1)`)
	set := b.Statements[0].(*ast.Set)
	is.Equal(set.FieldName, "amount")
	is.Equal(set.TypeHint, "decimal")
}

func TestParseFunctionCall(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(x, Max(1, 2, 3))`)
	set := b.Statements[0].(*ast.Set)
	call, ok := set.Value.(*ast.Call)
	is.True(ok)
	is.Equal(call.Name, "Max")
	is.Equal(len(call.Args), 3)
}

func TestParseIfElseIfElse(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `
if (1 > 2) {
	msg('a')
} elseif (2 > 1) {
	msg('b')
} else {
	msg('c')
}
`)
	is.Equal(len(b.Statements), 1)
	ifStmt, ok := b.Statements[0].(*ast.If)
	is.True(ok)
	is.Equal(len(ifStmt.ElseIfs), 1)
	is.True(ifStmt.HasElse)
}

func TestParseAssert(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `assert(1 > 2, 'return', 'failed', 'warn')`)
	a, ok := b.Statements[0].(*ast.Assert)
	is.True(ok)
	is.Equal(a.Action, ast.ActionReturn)
	is.Equal(a.Message, "failed")
	is.True(a.HasLevel)
	is.Equal(a.Level, ast.LevelWarn)
}

func TestParseAssertUnknownActionErrors(t *testing.T) {
	_, err := Parse(`assert(true, 'bogus', 'x')`, true)
	if err == nil {
		t.Fatal("expected error for unknown assert action")
	}
}

func TestParseReturnAndReturnLocal(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "return\nreturn_local")
	r1, ok := b.Statements[0].(*ast.Return)
	is.True(ok)
	is.Equal(r1.Kind, ast.KindReturn)
	r2, ok := b.Statements[1].(*ast.Return)
	is.True(ok)
	is.Equal(r2.Kind, ast.KindReturnLocal)
}

func TestParseLocalBlock(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "local {\n\tset(x, 1)\n}")
	l, ok := b.Statements[0].(*ast.Local)
	is.True(ok)
	is.Equal(len(l.Body.Statements), 1)
}

func TestParseTopLevelBraces(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "{\n\tset(x, 1)\n}")
	is.Equal(len(b.Statements), 1)
}

func TestParseKeywordsCaseInsensitive(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "SET(x, 1)")
	_, ok := b.Statements[0].(*ast.Set)
	is.True(ok)
}

func TestParseLiteralsAndNow(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(a, true)
set(b, false)
set(c, null)
set(d, now)`)
	is.Equal(len(b.Statements), 4)
	lit := b.Statements[0].(*ast.Set).Value.(*ast.Literal)
	is.Equal(lit.Value.Kind, ast.KindBool)
	is.True(lit.Value.Bool)
	nullLit := b.Statements[2].(*ast.Set).Value.(*ast.Literal)
	is.Equal(nullLit.Value.Kind, ast.KindNull)
	_, ok := b.Statements[3].(*ast.Set).Value.(*ast.Now)
	is.True(ok)
}

func TestParseUnaryAndParens(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, `set(x, -(1 + 2))`)
	set := b.Statements[0].(*ast.Set)
	un, ok := set.Value.(*ast.Unary)
	is.True(ok)
	is.Equal(un.Op, ast.Neg)
	_, ok = un.Inner.(*ast.Binary)
	is.True(ok)
}

func TestParseMsgRequiresLiteralLevel(t *testing.T) {
	_, err := Parse(`msg('hi', [level])`, true)
	if err == nil {
		t.Fatal("expected error for non-literal msg level")
	}
}

func TestParseUnterminatedIfIsError(t *testing.T) {
	_, err := Parse(`if (true) { set(x, 1)`, true)
	if err == nil {
		t.Fatal("expected error for unterminated if block")
	}
}
