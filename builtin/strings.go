package builtin

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/yang-sanmu/EasyExpression/internal/errs"

	"github.com/yang-sanmu/EasyExpression"
)

func registerStringFunctions(r *easyexpr.FunctionRegistry) {
	r.Register(easyexpr.Function{Name: "ToString", Invoke: fnToString})
	r.Register(easyexpr.Function{Name: "StartsWith", Invoke: fnStartsWith})
	r.Register(easyexpr.Function{Name: "EndsWith", Invoke: fnEndsWith})
	r.Register(easyexpr.Function{Name: "Contains", Invoke: fnContains})
	r.Register(easyexpr.Function{Name: "ToUpper", Invoke: fnToUpper})
	r.Register(easyexpr.Function{Name: "ToLower", Invoke: fnToLower})
	r.Register(easyexpr.Function{Name: "Trim", Invoke: fnTrim})
	r.Register(easyexpr.Function{Name: "Len", Invoke: fnLen})
	r.Register(easyexpr.Function{Name: "Replace", Invoke: fnReplace})
	r.Register(easyexpr.Function{Name: "Substring", Invoke: fnSubstring})
	r.Register(easyexpr.Function{Name: "RegexMatch", Invoke: fnRegexMatch})
	r.Register(easyexpr.Function{Name: "Coalesce", Invoke: fnCoalesce})
	r.Register(easyexpr.Function{Name: "Iif", Invoke: fnIif})
	r.Register(easyexpr.Function{Name: "FieldExists", Invoke: fnFieldExists})
}

func fnToString(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "ToString", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	return ctx.Converters.Convert(ctx.Options, args[0], easyexpr.KindString, ctx.Line, ctx.Column)
}

func fnStartsWith(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "StartsWith", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "StartsWith", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	p, err := requireString(ctx, "StartsWith", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	ci, err := optionalCaseInsensitive(ctx, "StartsWith", args, 2)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if ci {
		s, p = strings.ToLower(s), strings.ToLower(p)
	}
	return easyexpr.Bool(strings.HasPrefix(s, p)), nil
}

func fnEndsWith(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "EndsWith", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "EndsWith", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	p, err := requireString(ctx, "EndsWith", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	ci, err := optionalCaseInsensitive(ctx, "EndsWith", args, 2)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if ci {
		s, p = strings.ToLower(s), strings.ToLower(p)
	}
	return easyexpr.Bool(strings.HasSuffix(s, p)), nil
}

func fnContains(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Contains", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "Contains", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	p, err := requireString(ctx, "Contains", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	ci, err := optionalCaseInsensitive(ctx, "Contains", args, 2)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if ci {
		s, p = strings.ToLower(s), strings.ToLower(p)
	}
	return easyexpr.Bool(strings.Contains(s, p)), nil
}

func fnToUpper(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "ToUpper", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "ToUpper", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	return easyexpr.String(strings.ToUpper(s)), nil
}

func fnToLower(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "ToLower", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "ToLower", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	return easyexpr.String(strings.ToLower(s)), nil
}

func fnTrim(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Trim", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "Trim", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	return easyexpr.String(strings.TrimSpace(s)), nil
}

func fnLen(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Len", args, 1, 1); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "Len", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	return easyexpr.NumberFromInt(int64(len([]rune(s)))), nil
}

func fnReplace(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Replace", args, 3, 4); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "Replace", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	old, err := requireString(ctx, "Replace", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	neu, err := requireString(ctx, "Replace", args, 2)
	if err != nil {
		return easyexpr.Value{}, err
	}
	ci, err := optionalCaseInsensitive(ctx, "Replace", args, 3)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if !ci || old == "" {
		return easyexpr.String(strings.ReplaceAll(s, old, neu)), nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(old))
	if err != nil {
		return easyexpr.Value{}, argError(ctx, "Replace: %v", err)
	}
	return easyexpr.String(re.ReplaceAllString(s, neu)), nil
}

// fnSubstring implements 0-based, start-inclusive slicing over runes.
// start or start+length outside [0, len(s)] is an argument error, per §6.
func fnSubstring(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Substring", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "Substring", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	startV, err := requireNumber(ctx, "Substring", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	start := int(startV.AsNumber().IntPart())
	runes := []rune(s)
	if start < 0 || start > len(runes) {
		return easyexpr.Value{}, argError(ctx, "Substring: start %d out of range for length %d", start, len(runes))
	}
	if len(args) == 3 {
		lengthV, err := requireNumber(ctx, "Substring", args, 2)
		if err != nil {
			return easyexpr.Value{}, err
		}
		length := int(lengthV.AsNumber().IntPart())
		if length < 0 || start+length > len(runes) {
			return easyexpr.Value{}, argError(ctx, "Substring: length %d out of range from start %d (len %d)", length, start, len(runes))
		}
		return easyexpr.String(string(runes[start : start+length])), nil
	}
	return easyexpr.String(string(runes[start:])), nil
}

// fnRegexMatch guards regexp's lack of a native timeout by racing the
// match against a timer goroutine, per §9's regex-timeout design note.
func fnRegexMatch(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "RegexMatch", args, 2, 3); err != nil {
		return easyexpr.Value{}, err
	}
	s, err := requireString(ctx, "RegexMatch", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	pattern, err := requireString(ctx, "RegexMatch", args, 1)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if pattern == "" {
		return easyexpr.Value{}, argError(ctx, "RegexMatch: pattern must not be empty")
	}

	prefix := ""
	if len(args) == 3 {
		flags, err := requireString(ctx, "RegexMatch", args, 2)
		if err != nil {
			return easyexpr.Value{}, err
		}
		for _, f := range flags {
			switch f {
			case 'i', 'm', 's':
				prefix += string(f)
			default:
				return easyexpr.Value{}, argError(ctx, "RegexMatch: unsupported flag %q", string(f))
			}
		}
		if prefix != "" {
			prefix = "(?" + prefix + ")"
		}
	}

	re, err := regexp.Compile(prefix + pattern)
	if err != nil {
		return easyexpr.Value{}, argError(ctx, "RegexMatch: invalid pattern: %v", err)
	}

	if ctx.Options.RegexTimeoutMilliseconds <= 0 {
		return easyexpr.Bool(re.MatchString(s)), nil
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), time.Duration(ctx.Options.RegexTimeoutMilliseconds)*time.Millisecond)
	defer cancel()

	result := make(chan bool, 1)
	go func() { result <- re.MatchString(s) }()

	select {
	case matched := <-result:
		return easyexpr.Bool(matched), nil
	case <-timeoutCtx.Done():
		return easyexpr.Value{}, errs.New(errs.ExecutionTimeout, ctx.Line, ctx.Column, "RegexMatch exceeded %dms", ctx.Options.RegexTimeoutMilliseconds)
	}
}

func fnCoalesce(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Coalesce", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return easyexpr.Null, nil
}

func fnIif(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "Iif", args, 3, 3); err != nil {
		return easyexpr.Value{}, err
	}
	cond, err := requireBool(ctx, "Iif", args, 0)
	if err != nil {
		return easyexpr.Value{}, err
	}
	if cond {
		return args[1], nil
	}
	return args[2], nil
}

func fnFieldExists(args []easyexpr.Value, ctx easyexpr.FunctionContext) (easyexpr.Value, error) {
	if err := checkArity(ctx, "FieldExists", args, 1, -1); err != nil {
		return easyexpr.Value{}, err
	}
	for _, a := range args {
		name, err := requireString(ctx, "FieldExists", []easyexpr.Value{a}, 0)
		if err != nil {
			return easyexpr.Value{}, err
		}
		if !ctx.HasInput(name) {
			return easyexpr.Bool(false), nil
		}
	}
	return easyexpr.Bool(true), nil
}
