package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yang-sanmu/EasyExpression"
)

func TestToDecimalConvertsStringInput(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, ToDecimal('3.50'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.Number(mustDecimal(t, "3.50")), r.Assignments["result"])
}

func TestMaxAndMin(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, Max(3, 7, 2))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(7), r.Assignments["result"])

	r = e.Execute(`set(result, Min(3, 7, 2))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(2), r.Assignments["result"])
}

func TestSumAndAverage(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, Sum(1, 2, 3))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(6), r.Assignments["result"])

	r = e.Execute(`set(result, Average(1, 2, 3))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(2), r.Assignments["result"])
}

func TestRoundWithDigits(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, Round(3.14159, 2))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.Number(mustDecimal(t, "3.14")), r.Assignments["result"])
}

func TestAbs(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, Abs(-5))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(5), r.Assignments["result"])
}

func TestMaxRejectsNonNumericArgument(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, Max('a', 1))`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.InvalidFunctionArguments, r.ErrorCode)
}
