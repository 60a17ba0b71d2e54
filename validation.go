package easyexpr

import "github.com/yang-sanmu/EasyExpression/internal/validate"

// Complexity summarizes the shape of a validated script, for hosts that
// want to reject or flag scripts above some complexity threshold before
// ever executing them.
type Complexity struct {
	ArithmeticOps       int
	ComparisonOps       int
	LogicalOps          int
	FunctionCalls       int
	MaxNestedBlockDepth int
	ConditionalCount    int
	TotalExpressions    int
}

// FieldReference is one occurrence of a field read in a validated script.
type FieldReference struct {
	Name   string
	Line   int
	Column int
}

// ValidationWarning is a non-fatal issue surfaced by Validate, such as a
// call to a function name the engine's registry does not recognize.
type ValidationWarning struct {
	Code    string
	Message string
	Line    int
	Column  int
}

// ValidationResult is Engine.Validate's output: either a parse failure
// (Success false, Error* populated) or a full structural analysis of a
// syntactically valid script. Validate never evaluates the script, so a
// successful ValidationResult makes no claim about runtime type errors.
type ValidationResult struct {
	Success bool

	ErrorCode    Code
	ErrorMessage string
	ErrorLine    int
	ErrorColumn  int

	TotalNodes        int
	Complexity        Complexity
	UsedFunctions     []string
	ReferencedFields  []FieldReference
	DeclaredVariables []string
	Warnings          []ValidationWarning
}

func newValidationResult(res validate.Result) *ValidationResult {
	fields := make([]FieldReference, len(res.ReferencedFields))
	for i, f := range res.ReferencedFields {
		fields[i] = FieldReference{Name: f.Name, Line: f.Line, Column: f.Column}
	}

	warnings := make([]ValidationWarning, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = ValidationWarning{Code: w.Code, Message: w.Message, Line: w.Line, Column: w.Column}
	}

	return &ValidationResult{
		Success: true,
		TotalNodes: res.TotalNodes,
		Complexity: Complexity{
			ArithmeticOps:       res.Complexity.ArithmeticOps,
			ComparisonOps:       res.Complexity.ComparisonOps,
			LogicalOps:          res.Complexity.LogicalOps,
			FunctionCalls:       res.Complexity.FunctionCalls,
			MaxNestedBlockDepth: res.Complexity.MaxNestedBlockDepth,
			ConditionalCount:    res.Complexity.ConditionalCount,
			TotalExpressions:    res.Complexity.TotalExpressions,
		},
		UsedFunctions:     res.UsedFunctions,
		ReferencedFields:  fields,
		DeclaredVariables: res.DeclaredVariables,
		Warnings:          warnings,
	}
}
