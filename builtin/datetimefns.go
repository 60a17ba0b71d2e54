package builtin

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yang-sanmu/EasyExpression"
)

func registerDateTimeFunctions(r *easyexpr.FunctionRegistry) {
	r.Register(easyexpr.Function{Name: "ToDateTime", Invoke: fnToDateTime})
	r.Register(easyexpr.Function{Name: "FormatDateTime", Invoke: fnFormatDateTime})
	r.Register(easyexpr.Function{Name: "AddDays", Invoke: fnAddDays})
	r.Register(easyexpr.Function{Name: "AddHours", Invoke: fnAddHours})
	r.Register(easyexpr.Function{Name: "AddMinutes", Invoke: fnAddMinutes})
	r.Register(easyexpr.Function{Name: "AddSeconds", Invoke: fnAddSeconds})
	r.Register(easyexpr.Function{Name: "TimeSpan", Invoke: fnTimeSpan})
}

func fnToDateTime(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "ToDateTime", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	return ctx.Converters.Convert(ctx.Options, args[0], easyexpr.KindDateTime, ctx.Line, ctx.Column)
}

func fnFormatDateTime(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "FormatDateTime", args, 1, 2); err != nil {
		return easyexpr.Value{}, err
	}
	dt, err := requireDateTime(ctx, "FormatDateTime", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	pattern := ctx.Options.DateTimeFormat
	if len(args) == 2 {
		pattern, err = requireString(ctx, "FormatDateTime", args, 1)
		if err != nil {
			return easyexpr.Value{}, err
		}
	}
	return easyexpr.String(easyexpr.FormatDateTimePattern(dt.AsDateTime(), pattern)), nil
}

func addDuration(args []easyexpr.Value, ctx easyexpr.FunctionContext, name string, unit time.Duration) (easyexpr.Value, error) {
	if err := checkArity(ctx, name, args, 2, 2); err != nil {
		return easyexpr.Value{}, err
	}
	dt, err := requireDateTime(ctx, name, args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	amount, err := requireNumber(ctx, name, args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	f, _ := amount.AsNumber().Float64()
	return easyexpr.DateTime(dt.AsDateTime().Add(time.Duration(f * float64(unit)))), nil
}

func fnAddDays(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	return addDuration(args, ctx, "AddDays", 24*time.Hour)
}

func fnAddHours(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	return addDuration(args, ctx, "AddHours", time.Hour)
}

func fnAddMinutes(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	return addDuration(args, ctx, "AddMinutes", time.Minute)
}

func fnAddSeconds(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	return addDuration(args, ctx, "AddSeconds", time.Second)
}

// fnTimeSpan reports dt1 - dt2 in the requested unit, default hours.
func fnTimeSpan(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "TimeSpan", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	dt1, err := requireDateTime(ctx, "TimeSpan", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	dt2, err := requireDateTime(ctx, "TimeSpan", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	unit := "h"
	if len(args) == 3 {
		unit, err = requireString(ctx, "TimeSpan", args, 2)
		if err != nil {
			return easyexpr.Value{}, err
		}
	}

	diff := dt1.AsDateTime().Sub(dt2.AsDateTime())
	var result float64
	switch strings.ToLower(unit) {
	case "ms":
		result = float64(diff.Milliseconds())
	case "s":
		result = diff.Seconds()
	case "m":
		result = diff.Minutes()
	case "h":
		result = diff.Hours()
	case "d":
		result = diff.Hours() / 24
	default:
		return easyexpr.Value{}, argError(ctx, "TimeSpan: unsupported unit %q", unit)
	}
	return easyexpr.Number(decimal.NewFromFloat(result)), nil
}
