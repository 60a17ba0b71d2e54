package easyexpr

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yang-sanmu/EasyExpression/internal/ast"
	"github.com/yang-sanmu/EasyExpression/internal/errs"
)

// hostAdapter implements evaluator.Host on top of the real Value,
// ConverterRegistry, FunctionRegistry, and ExecutionScope types. It is
// the only place internal/evaluator's abstract interface{} payloads are
// unboxed back into Value, keeping the evaluator package itself free of
// any dependency on this package.
type hostAdapter struct {
	opts       *Options
	converters *ConverterRegistry
	functions  *FunctionRegistry
	scope      *ExecutionScope
	assigned   map[string]bool
}

func newHostAdapter(opts *Options, converters *ConverterRegistry, functions *FunctionRegistry, scope *ExecutionScope) *hostAdapter {
	return &hostAdapter{opts: opts, converters: converters, functions: functions, scope: scope, assigned: map[string]bool{}}
}

func val(v interface{}) Value { return v.(Value) }

func (h *hostAdapter) Kind(v interface{}) int   { return int(val(v).Kind()) }
func (h *hostAdapter) IsNull(v interface{}) bool { return val(v).IsNull() }
func (h *hostAdapter) Null() interface{}         { return Null }
func (h *hostAdapter) Bool(b bool) interface{}   { return Bool(b) }
func (h *hostAdapter) NumberFromInt(i int64) interface{} { return NumberFromInt(i) }
func (h *hostAdapter) AsBool(v interface{}) bool { return val(v).AsBool() }

func (h *hostAdapter) Now() interface{} {
	if h.opts.NowUseLocalTime {
		return DateTime(time.Now())
	}
	return DateTime(time.Now().UTC())
}

func (h *hostAdapter) toNumber(v Value, line, col int) (decimal.Decimal, error) {
	coerced, err := h.converters.Convert(h.opts, v, KindNumber, line, col)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return coerced.AsNumber(), nil
}

func (h *hostAdapter) toStringDefault(v Value, line, col int) (string, error) {
	if v.IsNull() && h.opts.TreatNullStringAsEmpty {
		return "", nil
	}
	coerced, err := h.converters.Convert(h.opts, v, KindString, line, col)
	if err != nil {
		return "", err
	}
	return coerced.AsString(), nil
}

func (h *hostAdapter) Neg(a interface{}, line, col int) (interface{}, error) {
	n, err := h.toNumber(val(a), line, col)
	if err != nil {
		return nil, err
	}
	return Number(n.Neg()), nil
}

func (h *hostAdapter) Add(a, b interface{}, line, col int) (interface{}, error) {
	av, bv := val(a), val(b)
	if av.Kind() == KindString || bv.Kind() == KindString {
		switch h.opts.StringConcat {
		case PreferNumericIfParsable:
			an, aerr := h.toNumber(av, line, col)
			bn, berr := h.toNumber(bv, line, col)
			if aerr == nil && berr == nil {
				return Number(an.Add(bn)), nil
			}
		}
		as, err := h.toStringDefault(av, line, col)
		if err != nil {
			return nil, err
		}
		bs, err := h.toStringDefault(bv, line, col)
		if err != nil {
			return nil, err
		}
		return String(as + bs), nil
	}
	an, err := h.toNumber(av, line, col)
	if err != nil {
		return nil, err
	}
	bn, err := h.toNumber(bv, line, col)
	if err != nil {
		return nil, err
	}
	return Number(an.Add(bn)), nil
}

func (h *hostAdapter) Sub(a, b interface{}, line, col int) (interface{}, error) {
	an, err := h.toNumber(val(a), line, col)
	if err != nil {
		return nil, err
	}
	bn, err := h.toNumber(val(b), line, col)
	if err != nil {
		return nil, err
	}
	return Number(an.Sub(bn)), nil
}

func (h *hostAdapter) Mul(a, b interface{}, line, col int) (interface{}, error) {
	an, err := h.toNumber(val(a), line, col)
	if err != nil {
		return nil, err
	}
	bn, err := h.toNumber(val(b), line, col)
	if err != nil {
		return nil, err
	}
	return Number(an.Mul(bn)), nil
}

func (h *hostAdapter) Div(a, b interface{}, line, col int) (interface{}, error) {
	an, err := h.toNumber(val(a), line, col)
	if err != nil {
		return nil, err
	}
	bn, err := h.toNumber(val(b), line, col)
	if err != nil {
		return nil, err
	}
	if bn.IsZero() {
		return nil, errs.New(errs.DivideByZero, line, col, "division by zero")
	}
	// Div pads the quotient to 16 fractional digits; reparsing its string
	// form drops the trailing zeros so 8/2 compares equal to 4.
	q, _ := decimal.NewFromString(an.Div(bn).String())
	return Number(q), nil
}

func (h *hostAdapter) Mod(a, b interface{}, line, col int) (interface{}, error) {
	an, err := h.toNumber(val(a), line, col)
	if err != nil {
		return nil, err
	}
	bn, err := h.toNumber(val(b), line, col)
	if err != nil {
		return nil, err
	}
	if bn.IsZero() {
		return nil, errs.New(errs.ModuloByZero, line, col, "modulo by zero")
	}
	return Number(an.Mod(bn)), nil
}

// operandClass classifies a relational operand per §4.4.
type operandClass int

const (
	classNumber operandClass = iota
	classDateTime
	classOther
)

func classify(v Value) operandClass {
	switch v.Kind() {
	case KindNumber:
		return classNumber
	case KindDateTime:
		return classDateTime
	default:
		return classOther
	}
}

func (h *hostAdapter) Compare(op ast.BinaryOp, a, b interface{}, line, col int) (interface{}, error) {
	av, bv := val(a), val(b)
	ca, cb := classify(av), classify(bv)

	switch {
	case ca == classDateTime && cb == classNumber, ca == classNumber && cb == classDateTime:
		return nil, errs.New(errs.TypeMismatch, line, col, "cannot compare DateTime and Number")

	case ca == classNumber && cb == classNumber:
		return h.compareNumbers(op, av.AsNumber(), bv.AsNumber()), nil

	case ca == classDateTime && cb == classDateTime:
		return h.compareTimes(op, av.AsDateTime(), bv.AsDateTime()), nil

	case ca == classDateTime && cb == classOther:
		bt, err := h.toDateTime(bv, line, col)
		if err != nil {
			return nil, err
		}
		return h.compareTimes(op, av.AsDateTime(), bt), nil
	case ca == classOther && cb == classDateTime:
		at, err := h.toDateTime(av, line, col)
		if err != nil {
			return nil, err
		}
		return h.compareTimes(op, at, bv.AsDateTime()), nil

	case ca == classNumber && cb == classOther:
		bn, err := h.toNumber(bv, line, col)
		if err != nil {
			return nil, err
		}
		return h.compareNumbers(op, av.AsNumber(), bn), nil
	case ca == classOther && cb == classNumber:
		an, err := h.toNumber(av, line, col)
		if err != nil {
			return nil, err
		}
		return h.compareNumbers(op, an, bv.AsNumber()), nil

	default: // classOther, classOther
		an, err := h.toNumber(av, line, col)
		if err != nil {
			return nil, err
		}
		bn, err := h.toNumber(bv, line, col)
		if err != nil {
			return nil, err
		}
		return h.compareNumbers(op, an, bn), nil
	}
}

func (h *hostAdapter) toDateTime(v Value, line, col int) (time.Time, error) {
	coerced, err := h.converters.Convert(h.opts, v, KindDateTime, line, col)
	if err != nil {
		return time.Time{}, err
	}
	return coerced.AsDateTime(), nil
}

func (h *hostAdapter) compareNumbers(op ast.BinaryOp, a, b decimal.Decimal) interface{} {
	c := a.Cmp(b)
	switch op {
	case ast.Gt:
		return Bool(c > 0)
	case ast.Lt:
		return Bool(c < 0)
	case ast.Ge:
		return Bool(c >= 0)
	case ast.Le:
		return Bool(c <= 0)
	}
	return Bool(false)
}

func (h *hostAdapter) compareTimes(op ast.BinaryOp, a, b time.Time) interface{} {
	switch op {
	case ast.Gt:
		return Bool(a.After(b))
	case ast.Lt:
		return Bool(a.Before(b))
	case ast.Ge:
		return Bool(a.After(b) || a.Equal(b))
	case ast.Le:
		return Bool(a.Before(b) || a.Equal(b))
	}
	return Bool(false)
}

func (h *hostAdapter) Equal(op ast.BinaryOp, a, b interface{}, line, col int) (interface{}, error) {
	av, bv := val(a), val(b)
	eq, err := h.equalValues(av, bv, line, col)
	if err != nil {
		return nil, err
	}
	if op == ast.Ne {
		eq = !eq
	}
	return Bool(eq), nil
}

func (h *hostAdapter) equalValues(av, bv Value, line, col int) (bool, error) {
	neitherString := av.Kind() != KindString && bv.Kind() != KindString

	if neitherString {
		switch {
		case av.Kind() == KindBool && bv.Kind() == KindBool:
			return av.AsBool() == bv.AsBool(), nil
		case av.Kind() == KindNumber && bv.Kind() == KindNumber:
			return av.AsNumber().Equal(bv.AsNumber()), nil
		case av.Kind() == KindDateTime && bv.Kind() == KindDateTime:
			return av.AsDateTime().Equal(bv.AsDateTime()), nil
		default:
			switch h.opts.EqualityCoercion {
			case Permissive, MixedNumericOnly:
				return h.stringEqual(av, bv, line, col)
			default: // Strict, NumberFriendly
				return false, errs.New(errs.TypeMismatch, line, col,
					"cannot compare %s and %s for equality", av.Kind(), bv.Kind())
			}
		}
	}

	switch h.opts.EqualityCoercion {
	case Strict:
		return h.stringEqual(av, bv, line, col)
	case NumberFriendly, Permissive:
		an, aerr := h.toNumber(av, line, col)
		bn, berr := h.toNumber(bv, line, col)
		if aerr == nil && berr == nil {
			return an.Equal(bn), nil
		}
		return h.stringEqual(av, bv, line, col)
	case MixedNumericOnly:
		if av.Kind() == KindString && bv.Kind() == KindString {
			return h.stringEqual(av, bv, line, col)
		}
		// only a strict-number/string pair gets numeric coercion; any other
		// mismatch (e.g. Bool/DateTime vs String) compares as strings.
		var numSide, strSide Value
		switch {
		case av.Kind() == KindNumber && bv.Kind() == KindString:
			numSide, strSide = av, bv
		case bv.Kind() == KindNumber && av.Kind() == KindString:
			numSide, strSide = bv, av
		default:
			return h.stringEqual(av, bv, line, col)
		}
		n, err := h.toNumber(strSide, line, col)
		if err != nil {
			return h.stringEqual(av, bv, line, col)
		}
		return numSide.AsNumber().Equal(n), nil
	}
	return h.stringEqual(av, bv, line, col)
}

func (h *hostAdapter) stringEqual(av, bv Value, line, col int) (bool, error) {
	as, err := h.toStringDefault(av, line, col)
	if err != nil {
		return false, err
	}
	bs, err := h.toStringDefault(bv, line, col)
	if err != nil {
		return false, err
	}
	if h.opts.StringComparison == IgnoreCase {
		return foldCaser.String(as) == foldCaser.String(bs), nil
	}
	return as == bs, nil
}

// mapFieldType maps a Field/Set type-hint spelling to a Kind (§4.4 step 3).
func mapFieldType(hint string) (Kind, bool) {
	switch strings.ToLower(hint) {
	case "string":
		return KindString, true
	case "decimal":
		return KindNumber, true
	case "bool":
		return KindBool, true
	case "datetime":
		return KindDateTime, true
	default:
		return 0, false
	}
}

func (h *hostAdapter) ReadField(name, typeHint string, line, col int) (interface{}, error) {
	if !h.opts.validateFieldName(name) {
		return nil, errs.New(errs.InvalidFieldName, line, col, "invalid field name %q", name)
	}
	v, ok := h.scope.read(name)
	if !ok {
		return nil, errs.New(errs.UnknownField, line, col, "unknown field %q", name)
	}

	var target Kind
	if typeHint != "" {
		t, ok := mapFieldType(typeHint)
		if !ok {
			return nil, errs.New(errs.TypeMismatch, line, col, "unknown type hint %q", typeHint)
		}
		target = t
	} else if !v.IsNull() {
		target = v.Kind()
	} else {
		target = KindString
	}

	coerced, err := h.converters.Convert(h.opts, v, target, line, col)
	if err != nil {
		return nil, err
	}
	return coerced, nil
}

func (h *hostAdapter) WriteField(name, typeHint string, v interface{}, line, col int) (interface{}, error) {
	value := val(v)
	if typeHint != "" {
		target, ok := mapFieldType(typeHint)
		if !ok {
			return nil, errs.New(errs.TypeMismatch, line, col, "unknown type hint %q", typeHint)
		}
		coerced, err := h.converters.Convert(h.opts, value, target, line, col)
		if err != nil {
			return nil, err
		}
		value = coerced
	}
	if value.Kind() == KindNumber {
		value = Number(applyRounding(value.AsNumber(), h.opts))
	}
	h.scope.write(name, value)
	h.assigned[h.opts.foldKey(name)] = true
	return value, nil
}

func applyRounding(d decimal.Decimal, opts *Options) decimal.Decimal {
	if opts.RoundingDigits < 0 {
		return d
	}
	switch opts.MidpointRounding {
	case RoundHalfEven:
		return d.RoundBank(opts.RoundingDigits)
	case RoundHalfDown:
		// A midpoint goes toward zero; anything else rounds to nearest.
		truncated := d.Truncate(opts.RoundingDigits)
		if d.Sub(truncated).Abs().Equal(decimal.New(5, -(opts.RoundingDigits + 1))) {
			return truncated
		}
		return d.Round(opts.RoundingDigits)
	default:
		return d.Round(opts.RoundingDigits)
	}
}

func (h *hostAdapter) FieldExists(name string) bool { return h.scope.fieldExists(name) }

func (h *hostAdapter) CallFunction(name string, args []interface{}, line, col int) (interface{}, error) {
	fn, ok := h.functions.Resolve(name)
	if !ok {
		return nil, errs.New(errs.UnknownFunction, line, col, "unknown function %q", name)
	}
	values := make([]Value, len(args))
	for i, a := range args {
		values[i] = val(a)
	}
	ctx := FunctionContext{Options: h.opts, Converters: h.converters, Inputs: h.scope.inputFields, Line: line, Column: col}
	out, err := fn.Invoke(values, ctx)
	if err != nil {
		if _, isEngine := err.(*EngineError); isEngine {
			return nil, err
		}
		return nil, errs.Wrap(errs.InvalidFunctionArguments, line, col, err, "invalid arguments to %s", name)
	}
	return out, nil
}

func (h *hostAdapter) LiteralValue(lit ast.LiteralValue, line, col int) (interface{}, error) {
	switch lit.Kind {
	case ast.KindNull:
		return Null, nil
	case ast.KindBool:
		return Bool(lit.Bool), nil
	case ast.KindNumber:
		v, err := NumberFromString(lit.Num)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidNumber, line, col, err, "invalid number literal %q", lit.Num)
		}
		return v, nil
	case ast.KindString:
		return String(lit.Str), nil
	}
	return nil, errs.New(errs.SyntaxError, line, col, "unknown literal kind")
}
