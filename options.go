package easyexpr

import (
	"time"

	"golang.org/x/text/cases"
)

// EqualityCoercion controls how `==`/`!=` compare mismatched operand
// types (§4.4).
type EqualityCoercion int

const (
	Strict EqualityCoercion = iota
	NumberFriendly
	Permissive
	MixedNumericOnly
)

// StringConcat controls binary `+` when either operand is a String (§4.4).
type StringConcat int

const (
	PreferStringIfAnyString StringConcat = iota
	PreferNumericIfParsable
)

// Options configures an Engine. It is a plain record constructed before
// engine creation; Options is treated as immutable once passed to New —
// registering converters/functions or mutating fields while executions
// are in flight is not supported.
type Options struct {
	DateTimeFormat string

	EnableComments bool

	MaxDepth      int
	MaxNodes      int
	MaxNodeVisits int

	TimeoutMilliseconds int

	CaseInsensitiveFieldNames bool
	StringComparison          StringComparisonMode

	RoundingDigits   int32
	MidpointRounding MidpointRoundingMode

	TreatNullStringAsEmpty bool
	TreatNullDecimalAsZero bool
	TreatNullBoolAsFalse   bool
	NullDateTimeDefault    time.Time

	NowUseLocalTime bool

	StrictFieldNameValidation bool
	FieldNameValidator        func(name string) bool

	RegexTimeoutMilliseconds int

	EqualityCoercion EqualityCoercion
	StringConcat     StringConcat

	EnableCompilationCache bool

	// EnableTracing assigns ExecutionResult.TraceID a fresh UUID per
	// Execute/ExecuteBlock call, letting a host correlate one result with
	// its own external logs.
	EnableTracing bool
}

// StringComparisonMode controls case sensitivity for string equality and
// for the built-in prefix/suffix/contains functions.
type StringComparisonMode int

const (
	IgnoreCase StringComparisonMode = iota
	CaseSensitive
)

// MidpointRoundingMode mirrors decimal.js/System.MidpointRounding-style
// rounding choices applied at Set-commit.
type MidpointRoundingMode int

const (
	RoundHalfUp MidpointRoundingMode = iota
	RoundHalfEven
	RoundHalfDown
)

// Option mutates an Options record during construction.
type Option func(o *Options)

// applyOptions runs every opt against o in order.
func applyOptions(o *Options, opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// defaultOptions returns the Options defaults named in §6.
func defaultOptions() Options {
	return Options{
		DateTimeFormat:            "yyyy-MM-dd HH:mm:ss",
		EnableComments:            true,
		MaxDepth:                  64,
		MaxNodes:                  2000,
		MaxNodeVisits:             10000,
		TimeoutMilliseconds:       0,
		CaseInsensitiveFieldNames: true,
		StringComparison:          IgnoreCase,
		RoundingDigits:            -1, // -1: no rounding applied
		MidpointRounding:          RoundHalfUp,
		NowUseLocalTime:           false,
		StrictFieldNameValidation: false,
		RegexTimeoutMilliseconds:  0,
		EqualityCoercion:          Permissive,
		StringConcat:              PreferStringIfAnyString,
		EnableCompilationCache:    true,
	}
}

// WithDateTimeFormat sets the canonical datetime pattern used by built-in
// parsers/formatters. Default: "yyyy-MM-dd HH:mm:ss".
func WithDateTimeFormat(pattern string) Option {
	return func(o *Options) { o.DateTimeFormat = pattern }
}

// WithComments enables or disables `//` and `/* */` in the lexer.
func WithComments(enabled bool) Option {
	return func(o *Options) { o.EnableComments = enabled }
}

// WithMaxDepth sets the max expression/block recursion depth.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithMaxNodes sets the max AST node count per script (compile-time
// reject).
func WithMaxNodes(n int) Option {
	return func(o *Options) { o.MaxNodes = n }
}

// WithMaxNodeVisits sets the max evaluator visits per execution.
func WithMaxNodeVisits(n int) Option {
	return func(o *Options) { o.MaxNodeVisits = n }
}

// WithTimeout sets the wall-clock execution budget; 0 disables it.
func WithTimeout(ms int) Option {
	return func(o *Options) { o.TimeoutMilliseconds = ms }
}

// WithCaseInsensitiveFieldNames controls field-lookup case folding.
func WithCaseInsensitiveFieldNames(b bool) Option {
	return func(o *Options) { o.CaseInsensitiveFieldNames = b }
}

// WithStringComparison sets case sensitivity for string equality and the
// built-in prefix/suffix/contains functions.
func WithStringComparison(mode StringComparisonMode) Option {
	return func(o *Options) { o.StringComparison = mode }
}

// WithRounding sets the digits and midpoint-rounding mode applied to
// Number values at Set-commit.
func WithRounding(digits int32, mode MidpointRoundingMode) Option {
	return func(o *Options) {
		o.RoundingDigits = digits
		o.MidpointRounding = mode
	}
}

// WithNullDefaults sets the null-field defaulting behavior for typed
// reads of a null field.
func WithNullDefaults(stringAsEmpty, decimalAsZero, boolAsFalse bool, dateTimeDefault time.Time) Option {
	return func(o *Options) {
		o.TreatNullStringAsEmpty = stringAsEmpty
		o.TreatNullDecimalAsZero = decimalAsZero
		o.TreatNullBoolAsFalse = boolAsFalse
		o.NullDateTimeDefault = dateTimeDefault
	}
}

// WithLocalTime selects the time zone used by the `now` keyword.
func WithLocalTime(b bool) Option {
	return func(o *Options) { o.NowUseLocalTime = b }
}

// WithStrictFieldNameValidation enforces `[A-Za-z0-9_ ]+` field names when
// no custom FieldNameValidator is set.
func WithStrictFieldNameValidation(b bool) Option {
	return func(o *Options) { o.StrictFieldNameValidation = b }
}

// WithFieldNameValidator installs a custom validator, overriding strict
// validation.
func WithFieldNameValidator(fn func(name string) bool) Option {
	return func(o *Options) { o.FieldNameValidator = fn }
}

// WithRegexTimeout sets the per-RegexMatch timeout; 0 means infinite.
func WithRegexTimeout(ms int) Option {
	return func(o *Options) { o.RegexTimeoutMilliseconds = ms }
}

// WithEqualityCoercion selects the `==`/`!=` mixed-type comparison mode.
func WithEqualityCoercion(mode EqualityCoercion) Option {
	return func(o *Options) { o.EqualityCoercion = mode }
}

// WithStringConcat selects binary `+`'s behavior when either side is a
// String.
func WithStringConcat(mode StringConcat) Option {
	return func(o *Options) { o.StringConcat = mode }
}

// WithCompilationCache enables or disables both compilation caches.
func WithCompilationCache(enabled bool) Option {
	return func(o *Options) { o.EnableCompilationCache = enabled }
}

// WithTracing enables stamping every ExecutionResult with a fresh TraceID.
func WithTracing(enabled bool) Option {
	return func(o *Options) { o.EnableTracing = enabled }
}

// validateFieldName applies Options.fieldNameValidator, falling back to
// strictFieldNameValidation, per §4.4 step 1.
func (o *Options) validateFieldName(name string) bool {
	if o.FieldNameValidator != nil {
		return o.FieldNameValidator(name)
	}
	if !o.StrictFieldNameValidation {
		return true
	}
	for _, r := range name {
		if !(r == '_' || r == ' ' ||
			(r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return len(name) > 0
}

var foldCaser = cases.Fold()

// foldKey applies the case-folding comparator selected by
// CaseInsensitiveFieldNames.
func (o *Options) foldKey(name string) string {
	if o.CaseInsensitiveFieldNames {
		return foldCaser.String(name)
	}
	return name
}
