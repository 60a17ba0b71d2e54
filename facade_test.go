package easyexpr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yang-sanmu/EasyExpression"
	"github.com/yang-sanmu/EasyExpression/builtin"
)

// TestArithmeticPrecedence covers spec scenario 1: {} / set(a,1+2*3) etc.
func TestArithmeticPrecedence(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`{
		set(a, 1+2*3)
		set(b, (1+2)*3)
		set(c, 7%4)
		set(d, 8/2)
	}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(7), r.Assignments["a"])
	assert.Equal(t, easyexpr.NumberFromInt(9), r.Assignments["b"])
	assert.Equal(t, easyexpr.NumberFromInt(3), r.Assignments["c"])
	assert.Equal(t, easyexpr.NumberFromInt(4), r.Assignments["d"])
}

// TestFieldTypedReadWithNullDefault covers scenario 2.
func TestFieldTypedReadWithNullDefault(t *testing.T) {
	e := easyexpr.New(easyexpr.WithNullDefaults(false, true, false, time.Time{}))
	r := e.Execute(`set(a, [nullField:decimal] + 5)`, map[string]easyexpr.Value{
		"nullField": easyexpr.Null,
	})
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(5), r.Assignments["a"])
}

// TestShortCircuitSafety covers scenario 3: the right side of a
// short-circuited || is never evaluated, so an unknown function there
// produces no error; once the left side no longer short-circuits, the
// same call surfaces UnknownFunction.
func TestShortCircuitSafety(t *testing.T) {
	e := easyexpr.New()

	r := e.Execute(`set(a, true || NotAFunction(1))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.Bool(true), r.Assignments["a"])

	r = e.Execute(`set(a, false || NotAFunction(1))`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.UnknownFunction, r.ErrorCode)
}

// TestEqualityCoercionMixedNumericOnly covers scenario 4.
func TestEqualityCoercionMixedNumericOnly(t *testing.T) {
	e := easyexpr.New(easyexpr.WithEqualityCoercion(easyexpr.MixedNumericOnly))
	r := e.Execute(`{
		set(a, '2.0' == '2')
		set(b, 2 == '2.0')
		set(c, 'abc' == 123)
	}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.Bool(false), r.Assignments["a"])
	assert.Equal(t, easyexpr.Bool(true), r.Assignments["b"])
	assert.Equal(t, easyexpr.Bool(false), r.Assignments["c"])
}

// TestEqualityCoercionMixedNumericOnlyNonNumericOperand covers the
// "any other mismatch" clause of spec.md §4.4's MixedNumericOnly rule:
// a Bool or DateTime operand paired with a numeric-looking String is not
// a strict-number/string pair, so it must compare as strings, not fall
// through to numeric coercion of the zero-value Number.
func TestEqualityCoercionMixedNumericOnlyNonNumericOperand(t *testing.T) {
	e := easyexpr.New(easyexpr.WithEqualityCoercion(easyexpr.MixedNumericOnly))
	r := e.Execute(`{
		set(a, true == '0')
		set(b, false == '0')
	}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.Bool(false), r.Assignments["a"])
	assert.Equal(t, easyexpr.Bool(false), r.Assignments["b"])
}

// TestLocalReturnLocal covers scenario 5.
func TestLocalReturnLocal(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`{
		local {
			set(a,1)
			return_local
			set(a,2)
		}
		set(b,9)
	}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(1), r.Assignments["a"])
	assert.Equal(t, easyexpr.NumberFromInt(9), r.Assignments["b"])
}

// TestAssertWarnReturn covers scenario 6.
func TestAssertWarnReturn(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`{
		assert(false, 'return', 'X', 'warn')
		set(a,1)
	}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	require.Len(t, r.Messages, 1)
	assert.Equal(t, easyexpr.Warn, r.Messages[0].Level)
	assert.Equal(t, "X", r.Messages[0].Text)
	_, ok := r.Assignments["a"]
	assert.False(t, ok)
}

// TestEmptyScriptSucceeds covers the "empty script" and "{}" boundary
// behaviors: zero assignments, zero messages, no error.
func TestEmptyScriptSucceeds(t *testing.T) {
	e := easyexpr.New()

	r := e.Execute(``, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Empty(t, r.Assignments)
	assert.Empty(t, r.Messages)

	r = e.Execute(`{}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Empty(t, r.Assignments)
	assert.Empty(t, r.Messages)
}

// TestCommentsAndBlankLinesOnlyScriptIsEmpty covers the boundary behavior
// that a script consisting solely of comments and newlines behaves as
// empty.
func TestCommentsAndBlankLinesOnlyScriptIsEmpty(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute("\n// just a comment\n\n/* and a block comment */\n\n", nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Empty(t, r.Assignments)
}

// TestFieldNameWithSpaces covers the boundary behavior for
// set([field name], 'x').
func TestFieldNameWithSpaces(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`set([field name], 'x')`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("x"), r.Assignments["field name"])
}

// TestIfElseIfElseExactlyOneBranch exercises the facade end-to-end for
// the if/elseif/else invariant (exactly one branch, or none, executes).
func TestIfElseIfElseExactlyOneBranch(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`
if (1 > 2) {
	set(branch, 1)
} elseif (2 > 1) {
	set(branch, 2)
} else {
	set(branch, 3)
}`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(2), r.Assignments["branch"])
}

// TestSetWithRoundingAppliesAtCommit verifies Options.roundingDigits is
// applied only at Set-commit, not to intermediate subexpressions.
func TestSetWithRoundingAppliesAtCommit(t *testing.T) {
	e := easyexpr.New(easyexpr.WithRounding(2, easyexpr.RoundHalfUp))
	r := e.Execute(`set(a, 1/3)`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, "0.33", r.Assignments["a"].AsNumber().String())
}

// TestMaxNodeVisitsExceededReportsPositionAndPartialState verifies the
// limits invariant: partial assignments/messages up to the failure point
// are preserved, and the error carries a script position.
func TestMaxNodeVisitsExceededReportsPositionAndPartialState(t *testing.T) {
	e := easyexpr.New(easyexpr.WithMaxNodeVisits(3))
	r := e.Execute(`{
		set(a, 1)
		set(b, 2)
		set(c, 3)
	}`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.MaxVisitsExceeded, r.ErrorCode)
	assert.Greater(t, r.ErrorLine, 0)
}

// TestScriptTooLargeRejectedAtCompile verifies the precompile maxNodes
// check fails before any execution occurs.
func TestScriptTooLargeRejectedAtCompile(t *testing.T) {
	e := easyexpr.New(easyexpr.WithMaxNodes(3))
	r := e.Execute(`set(a, 1+2*3)`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.ScriptTooLarge, r.ErrorCode)
}

// TestCompilationCacheIsTransparent verifies execute(s,i) and
// execute(compile(s),i) agree on every observable result field.
func TestCompilationCacheIsTransparent(t *testing.T) {
	e := easyexpr.New()
	script := `set(a, 1+2*3)`

	direct := e.Execute(script, nil)
	block, err := e.Compile(script)
	require.NoError(t, err)
	viaBlock := e.ExecuteBlock(block, nil)

	assert.Equal(t, direct.Assignments, viaBlock.Assignments)
	assert.Equal(t, direct.HasError, viaBlock.HasError)
	assert.Equal(t, direct.ErrorCode, viaBlock.ErrorCode)
}

// TestInputFieldsUnaffectedByPriorSet verifies inputFields observed
// inside an expression equals the caller's input map, independent of any
// prior Set to the same name.
func TestInputFieldsUnaffectedByPriorSet(t *testing.T) {
	e := easyexpr.New()
	builtin.RegisterAll(e.Functions())
	r := e.Execute(`{
		set(x, 99)
		set(stillOriginal, FieldExists('x'))
	}`, map[string]easyexpr.Value{"x": easyexpr.NumberFromInt(1)})
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(99), r.Assignments["x"])
	assert.Equal(t, easyexpr.Bool(true), r.Assignments["stillOriginal"])
}

// TestValidateWarnsOnUnregisteredFunctionWithoutFailing covers Validate's
// behavior of surfacing an unknown-function call as a warning rather than
// an error (unlike Execute).
func TestValidateWarnsOnUnregisteredFunctionWithoutFailing(t *testing.T) {
	e := easyexpr.New()
	vr := e.Validate(`set(a, TotallyUnknownFunction(1))`)
	require.True(t, vr.Success)
	require.Len(t, vr.Warnings, 1)
	assert.Equal(t, "PotentialIssue", vr.Warnings[0].Code)
}

// TestUnknownFieldFailsExecution covers the UnknownField runtime error.
func TestUnknownFieldFailsExecution(t *testing.T) {
	e := easyexpr.New()
	r := e.Execute(`set(a, [neverSet])`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.UnknownField, r.ErrorCode)
}

// TestDivideAndModuloByZero covers the DivideByZero/ModuloByZero codes.
func TestDivideAndModuloByZero(t *testing.T) {
	e := easyexpr.New()

	r := e.Execute(`set(a, 1/0)`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.DivideByZero, r.ErrorCode)

	r = e.Execute(`set(a, 1%0)`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.ModuloByZero, r.ErrorCode)
}
