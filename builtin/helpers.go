// Package builtin registers the engine's built-in String/Math/DateTime
// functions into a FunctionRegistry. Core (the root easyexpr package)
// depends only on these functions' names, arities, and return shapes
// (§6); their bodies live here so a host opts in explicitly via
// RegisterAll rather than getting them for free from easyexpr.New.
package builtin

import (
	"github.com/yang-sanmu/EasyExpression/internal/errs"

	"github.com/yang-sanmu/EasyExpression"
)

// argError builds an InvalidFunctionArguments error at the call site,
// matching §7's rule that a built-in's generic argument error gets
// wrapped under that one code.
func argError(ctx easyexpr.FunctionContext, format string, args ...interface{}) error {
	return errs.New(errs.InvalidFunctionArguments, ctx.Line, ctx.Column, format, args...)
}

func checkArity(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		if min == max {
			return argError(ctx, "%s expects %d argument(s), got %d", name, min, len(args))
		}
		return argError(ctx, "%s expects between %d and %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

func requireString(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, i int) (string, error) {
	if args[i].Kind() != easyexpr.KindString {
		return "", argError(ctx, "%s argument %d must be a String", name, i+1)
	}
	return args[i].AsString(), nil
}

func requireBool(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, i int) (bool, error) {
	if args[i].Kind() != easyexpr.KindBool {
		return false, argError(ctx, "%s argument %d must be a Boolean", name, i+1)
	}
	return args[i].AsBool(), nil
}

func requireNumber(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, i int) (easyexpr.Value, error) {
	if args[i].Kind() != easyexpr.KindNumber {
		return easyexpr.Value{}, argError(ctx, "%s argument %d must be a Number", name, i+1)
	}
	return args[i], nil
}

func requireDateTime(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, i int) (easyexpr.Value, error) {
	if args[i].Kind() != easyexpr.KindDateTime {
		return easyexpr.Value{}, argError(ctx, "%s argument %d must be a DateTime", name, i+1)
	}
	return args[i], nil
}

// optionalCaseInsensitive resolves a trailing [ci] boolean argument,
// falling back to ctx.Options.StringComparison when the caller omits it.
func optionalCaseInsensitive(ctx easyexpr.FunctionContext, name string, args []easyexpr.Value, presentAt int) (bool, error) {
	if len(args) > presentAt {
		return requireBool(ctx, name, args, presentAt)
	}
	return ctx.Options.StringComparison == easyexpr.IgnoreCase, nil
}
