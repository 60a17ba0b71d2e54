package easyexpr

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the runtime type tags a Value can carry. The evaluator
// classifies by Kind, never by reflection.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindDateTime:
		return "DateTime"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a dynamically-typed datum: Null, Bool, Number (exact decimal),
// String, or DateTime (naive wall-clock instant). It is a tagged variant,
// not a generic interface{} box, so the evaluator's type classification is
// always a switch over Kind.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	s    string
	t    time.Time
}

// Null is the null Value.
var Null = Value{kind: KindNull}

// Bool wraps a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a decimal Value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, n: d} }

// NumberFromString parses text as an exact decimal Value.
func NumberFromString(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, err
	}
	return Number(d), nil
}

// NumberFromInt wraps an int64 as a decimal Value.
func NumberFromInt(i int64) Value { return Number(decimal.NewFromInt(i)) }

// String wraps a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// DateTime wraps a naive instant Value.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// Kind reports the Value's runtime type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. Only meaningful when Kind() == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the decimal payload. Only meaningful when Kind() == KindNumber.
func (v Value) AsNumber() decimal.Decimal { return v.n }

// AsString returns the string payload. Only meaningful when Kind() == KindString.
func (v Value) AsString() string { return v.s }

// AsDateTime returns the time payload. Only meaningful when Kind() == KindDateTime.
func (v Value) AsDateTime() time.Time { return v.t }

// DefaultString renders v using the engine's default stringification,
// used by binary `+` when concatenating and by the any→String converter.
func (v Value) DefaultString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.n.String()
	case KindString:
		return v.s
	case KindDateTime:
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal reports raw structural equality (same Kind and payload). The
// evaluator does not call it; script equality and its coercion rules live
// in hostAdapter.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n.Equal(other.n)
	case KindString:
		return v.s == other.s
	case KindDateTime:
		return v.t.Equal(other.t)
	default:
		return false
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.DefaultString())
}
