package easyexpr

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/yang-sanmu/EasyExpression/internal/errs"
)

// Converter coerces a Value of InputKind to OutputKind. Registries scan
// most-recently-registered first (last-registered wins, via prepend), try
// only converters whose InputKind and OutputKind match the request
// exactly, and let TryConvert decline a value by returning ok == false.
type Converter struct {
	Name       string
	InputKind  Kind
	OutputKind Kind
	TryConvert func(opts *Options, v Value) (Value, bool, error)
}

// ConverterRegistry is an ordered sequence of Converters. Register
// prepends, so the most recently registered converter for a given
// (input,output) pair is tried first — "last-registered wins".
type ConverterRegistry struct {
	converters []Converter
}

// NewConverterRegistry builds a registry pre-populated with the engine's
// built-in coercions.
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{}
	for _, c := range builtinConverters() {
		r.Register(c)
	}
	return r
}

// Register prepends c so it is tried before any previously registered
// converter targeting the same kinds.
func (r *ConverterRegistry) Register(c Converter) {
	r.converters = append([]Converter{c}, r.converters...)
}

// Convert coerces v to target, applying null-defaulting options first per
// spec: null input with a String target yields empty string; null input
// with numeric/bool/datetime targets consults the Options null-default
// settings before delegating to a registered Converter.
func (r *ConverterRegistry) Convert(opts *Options, v Value, target Kind, line, column int) (Value, error) {
	if v.Kind() == target {
		return v, nil
	}
	if v.IsNull() {
		switch target {
		case KindString:
			return String(""), nil
		case KindNumber:
			if opts.TreatNullDecimalAsZero {
				return Number(decimal.Zero), nil
			}
		case KindBool:
			if opts.TreatNullBoolAsFalse {
				return Bool(false), nil
			}
		case KindDateTime:
			if !opts.NullDateTimeDefault.IsZero() {
				return DateTime(opts.NullDateTimeDefault), nil
			}
		}
	}
	for _, c := range r.converters {
		if c.InputKind != v.Kind() || c.OutputKind != target {
			continue
		}
		out, ok, err := c.TryConvert(opts, v)
		if err != nil {
			return Value{}, errs.Wrap(errs.ConversionError, line, column, err,
				"cannot convert %s to %s", v.Kind(), target)
		}
		if ok {
			return out, nil
		}
	}
	return Value{}, errs.New(errs.ConversionError, line, column,
		"no converter from %s to %s", v.Kind(), target)
}

func builtinConverters() []Converter {
	return []Converter{
		{Name: "anyToString", InputKind: KindNull, OutputKind: KindString,
			TryConvert: func(_ *Options, v Value) (Value, bool, error) { return String(v.DefaultString()), true, nil }},
		{Name: "boolToString", InputKind: KindBool, OutputKind: KindString,
			TryConvert: func(_ *Options, v Value) (Value, bool, error) { return String(v.DefaultString()), true, nil }},
		{Name: "numberToString", InputKind: KindNumber, OutputKind: KindString,
			TryConvert: func(_ *Options, v Value) (Value, bool, error) { return String(v.DefaultString()), true, nil }},
		{Name: "dateTimeToString", InputKind: KindDateTime, OutputKind: KindString,
			TryConvert: func(opts *Options, v Value) (Value, bool, error) {
				return String(formatGoTime(v.AsDateTime(), opts.DateTimeFormat)), true, nil
			}},
		{Name: "stringToDecimal", InputKind: KindString, OutputKind: KindNumber,
			TryConvert: func(_ *Options, v Value) (Value, bool, error) {
				d, err := decimal.NewFromString(strings.TrimSpace(v.AsString()))
				if err != nil {
					return Value{}, false, errors.Wrapf(err, "parsing %q as decimal", v.AsString())
				}
				return Number(d), true, nil
			}},
		{Name: "stringToBool", InputKind: KindString, OutputKind: KindBool,
			TryConvert: func(_ *Options, v Value) (Value, bool, error) {
				switch strings.ToLower(strings.TrimSpace(v.AsString())) {
				case "true":
					return Bool(true), true, nil
				case "false":
					return Bool(false), true, nil
				}
				return Value{}, false, errors.Errorf("%q is not a boolean", v.AsString())
			}},
		{Name: "stringToDateTime", InputKind: KindString, OutputKind: KindDateTime,
			TryConvert: func(opts *Options, v Value) (Value, bool, error) {
				t, err := parseGoTime(v.AsString(), opts.DateTimeFormat)
				if err != nil {
					return Value{}, false, err
				}
				return DateTime(t), true, nil
			}},
	}
}

// formatGoTime and parseGoTime translate the engine's .NET-style date
// pattern (e.g. "yyyy-MM-dd HH:mm:ss") into Go's reference-time layout.
func formatGoTime(t time.Time, pattern string) string {
	return t.Format(translateDateTimePattern(pattern))
}

func parseGoTime(s, pattern string) (time.Time, error) {
	return time.Parse(translateDateTimePattern(pattern), s)
}

// FormatDateTimePattern renders t using the engine's .NET-style pattern
// vocabulary. It is exported so the builtin function collaborators (§6)
// can format dates the same way the any→String converter does, without
// duplicating the token translation table.
func FormatDateTimePattern(t time.Time, pattern string) string {
	return formatGoTime(t, pattern)
}

// ParseDateTimePattern parses s using the engine's .NET-style pattern
// vocabulary, mirroring FormatDateTimePattern's translation.
func ParseDateTimePattern(s, pattern string) (time.Time, error) {
	return parseGoTime(s, pattern)
}

var dateTimeTokenReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

func translateDateTimePattern(pattern string) string {
	if pattern == "" {
		pattern = "yyyy-MM-dd HH:mm:ss"
	}
	return dateTimeTokenReplacer.Replace(pattern)
}
