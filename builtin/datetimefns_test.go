package builtin_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yang-sanmu/EasyExpression"
)

func TestToDateTimeParsesDefaultFormat(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, ToDateTime('2024-03-15 10:30:00'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.KindDateTime, r.Assignments["result"].Kind())
}

func TestFormatDateTimeWithExplicitPattern(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, FormatDateTime(ToDateTime('2024-03-15 10:30:00'), 'yyyy/MM/dd'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("2024/03/15"), r.Assignments["result"])
}

func TestAddDaysHoursMinutesSeconds(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, FormatDateTime(AddDays(ToDateTime('2024-03-15 10:30:00'), 1), 'yyyy-MM-dd'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("2024-03-16"), r.Assignments["result"])

	r = e.Execute(`set(result, FormatDateTime(AddHours(ToDateTime('2024-03-15 10:30:00'), 2), 'HH:mm:ss'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("12:30:00"), r.Assignments["result"])

	r = e.Execute(`set(result, FormatDateTime(AddMinutes(ToDateTime('2024-03-15 10:30:00'), 15), 'HH:mm:ss'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("10:45:00"), r.Assignments["result"])

	r = e.Execute(`set(result, FormatDateTime(AddSeconds(ToDateTime('2024-03-15 10:30:00'), 30), 'HH:mm:ss'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("10:30:30"), r.Assignments["result"])
}

func TestTimeSpanDefaultUnitIsHours(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, TimeSpan(ToDateTime('2024-03-15 12:00:00'), ToDateTime('2024-03-15 10:00:00')))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(2), r.Assignments["result"])
}

func TestTimeSpanWithUnit(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, TimeSpan(ToDateTime('2024-03-16 00:00:00'), ToDateTime('2024-03-15 00:00:00'), 'd'))`, nil)
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.NumberFromInt(1), r.Assignments["result"])
}

func TestTimeSpanUnsupportedUnitIsError(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, TimeSpan(ToDateTime('2024-03-15 10:00:00'), ToDateTime('2024-03-15 09:00:00'), 'y'))`, nil)
	require.True(t, r.HasError)
	assert.Equal(t, easyexpr.InvalidFunctionArguments, r.ErrorCode)
}

func TestAddDaysFromHostDateTimeInput(t *testing.T) {
	e := newTestEngine()

	r := e.Execute(`set(result, FormatDateTime(AddDays(start, 7), 'yyyy-MM-dd'))`, map[string]easyexpr.Value{
		"start": easyexpr.DateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.False(t, r.HasError, r.ErrorMessage)
	assert.Equal(t, easyexpr.String("2024-01-08"), r.Assignments["result"])
}
