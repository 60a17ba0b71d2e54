package builtin

import "github.com/yang-sanmu/EasyExpression"

// RegisterAll wires every String/Math/DateTime built-in (§6) into r. A
// host calls this once after easyexpr.New, before compiling any script
// that calls a built-in by name; Engine itself registers none of these
// so hosts that want a smaller surface can register a subset instead.
func RegisterAll(r *easyexpr.FunctionRegistry) {
	registerStringFunctions(r)
	registerMathFunctions(r)
	registerDateTimeFunctions(r)
}
