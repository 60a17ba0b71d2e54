package builtin

import (
	"github.com/shopspring/decimal"

	"github.com/yang-sanmu/EasyExpression"
)

func registerMathFunctions(r *easyexpr.FunctionRegistry) {
	r.Register(easyexpr.Function{Name: "ToDecimal", Invoke: fnToDecimal})
	r.Register(easyexpr.Function{Name: "Max", Invoke: fnMax})
	r.Register(easyexpr.Function{Name: "Min", Invoke: fnMin})
	r.Register(easyexpr.Function{Name: "Sum", Invoke: fnSum})
	r.Register(easyexpr.Function{Name: "Average", Invoke: fnAverage})
	r.Register(easyexpr.Function{Name: "Round", Invoke: fnRound})
	r.Register(easyexpr.Function{Name: "Abs", Invoke: fnAbs})
}

func fnToDecimal(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "ToDecimal", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	return ctx.Converters.Convert(ctx.Options, args[0], easyexpr.KindNumber, ctx.Line, ctx.Column)
}

func numberArgs(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(args))
	for i := range args {
		v, err := requireNumber(ctx, name, args, i)
		if err != nil {
			return nil, err
		}
		out[i] = v.AsNumber()
	}
	return out, nil
}

func fnMax(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Max", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	nums, err := numberArgs(ctx, "Max", args)
	if err != nil {
		return easyexpr.Value{}, err
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.GreaterThan(best) {
			best = n
		}
	}
	return easyexpr.Number(best), nil
}

func fnMin(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Min", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	nums, err := numberArgs(ctx, "Min", args)
	if err != nil {
		return easyexpr.Value{}, err
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.LessThan(best) {
			best = n
		}
	}
	return easyexpr.Number(best), nil
}

func fnSum(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Sum", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	nums, err := numberArgs(ctx, "Sum", args)
	if err != nil {
		return easyexpr.Value{}, err
	}
	total := decimal.Zero
	for _, n := range nums {
		total = total.Add(n)
	}
	return easyexpr.Number(total), nil
}

func fnAverage(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Average", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	nums, err := numberArgs(ctx, "Average", args)
	if err != nil {
		return easyexpr.Value{}, err
	}
	total := decimal.Zero
	for _, n := range nums {
		total = total.Add(n)
	}
	// Reparse to drop the trailing zeros Div pads the quotient with.
	avg, _ := decimal.NewFromString(total.Div(decimal.NewFromInt(int64(len(nums)))).String())
	return easyexpr.Number(avg), nil
}

func fnRound(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Round", args, 1, 2); err != nil {
		return easyexpr.Value{}, err
	}
	v, err := requireNumber(ctx, "Round", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	digits := int32(0)
	if len(args) == 2 {
		d, err := requireNumber(ctx, "Round", args, 1)
		if err != nil {
			return easyexpr.Value{}, err
		}
		digits = int32(d.AsNumber().IntPart())
	}
	return easyexpr.Number(v.AsNumber().Round(digits)), nil
}

func fnAbs(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Abs", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	v, err := requireNumber(ctx, "Abs", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	return easyexpr.Number(v.AsNumber().Abs()), nil
}
