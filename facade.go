package easyexpr

import (
	"time"

	"github.com/google/uuid"

	"github.com/yang-sanmu/EasyExpression/internal/ast"
	"github.com/yang-sanmu/EasyExpression/internal/budget"
	"github.com/yang-sanmu/EasyExpression/internal/evaluator"
	"github.com/yang-sanmu/EasyExpression/internal/parser"
	"github.com/yang-sanmu/EasyExpression/internal/validate"
)

// Engine is the embeddable expression engine: it owns one Options record,
// one Converter registry, one Function registry, and one compilation
// cache, all shared read-only across concurrent Execute calls. Compile,
// Execute, ExecuteBlock, and Validate are its entry points.
type Engine struct {
	opts       Options
	converters *ConverterRegistry
	functions  *FunctionRegistry
	cache      *CompilationCache
}

// New creates an Engine. Its Converter and Function registries start out
// pre-populated with the built-in coercions (see converter.go); no
// Functions are registered by default — a host wires its own collection
// (e.g. the builtin package) via Functions().Register before first use.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	applyOptions(&o, opts...)
	return &Engine{
		opts:       o,
		converters: NewConverterRegistry(),
		functions:  NewFunctionRegistry(),
		cache:      NewCompilationCache(),
	}
}

// Converters exposes the engine's Converter registry for host registration.
func (e *Engine) Converters() *ConverterRegistry { return e.converters }

// Functions exposes the engine's Function registry for host registration.
func (e *Engine) Functions() *FunctionRegistry { return e.functions }

// Options returns a copy of the engine's configuration.
func (e *Engine) Options() Options { return e.opts }

// Compile parses script into a Block, consulting and populating the
// compilation cache (unless Options.EnableCompilationCache is false). A
// cache hit returns the same *ast.Block pointer to every caller, since
// compiled Blocks are never mutated after insertion.
func (e *Engine) Compile(script string) (*ast.Block, error) {
	if e.opts.EnableCompilationCache {
		if b, ok := e.cache.Get(script); ok {
			return b, nil
		}
	}

	block, err := parser.Parse(script, e.opts.EnableComments)
	if err != nil {
		return nil, err
	}

	n := ast.CountNodes(block)
	if err := budget.CheckScriptSize(n, e.opts.MaxNodes, block.Line, block.Column); err != nil {
		return nil, err
	}

	if e.opts.EnableCompilationCache {
		e.cache.Put(script, block)
	}
	return block, nil
}

// Execute compiles script (consulting the cache) and runs it against
// inputs. Compile failures and evaluation failures are both translated
// into an ExecutionResult with HasError set, never returned as a Go
// error, so a host always gets assignments/messages accumulated up to
// the failure point.
func (e *Engine) Execute(script string, inputs map[string]Value) *ExecutionResult {
	block, err := e.Compile(script)
	if err != nil {
		return newFailureResult(nil, nil, err, snippetFromSource(script, err))
	}
	return e.run(block, inputs, script)
}

// ExecuteBlock runs a previously compiled Block against inputs, skipping
// the compile step entirely. If block was produced by a Compile call
// still held in the cache, error snippets are still available; otherwise
// ErrorSnippet is left empty.
func (e *Engine) ExecuteBlock(block *ast.Block, inputs map[string]Value) *ExecutionResult {
	return e.run(block, inputs, "")
}

func (e *Engine) run(block *ast.Block, inputs map[string]Value, script string) *ExecutionResult {
	start := time.Now()
	var traceID string
	if e.opts.EnableTracing {
		traceID = uuid.NewString()
	}
	scope := newExecutionScope(&e.opts, inputs)
	host := newHostAdapter(&e.opts, e.converters, e.functions, scope)
	ev := evaluator.New(host, budget.Limits{
		MaxNodeVisits: e.opts.MaxNodeVisits,
		MaxDepth:      e.opts.MaxDepth,
		TimeoutMillis: e.opts.TimeoutMilliseconds,
	})

	_, err := ev.Run(block)
	elapsed := time.Since(start)
	assignments := scope.assignmentsFor(host.assigned)
	messages := translateMessages(ev.Messages)

	if err != nil {
		var snippet string
		if script != "" {
			snippet = snippetFromSource(script, err)
		} else if lines, ok := e.cache.LinesForBlock(block); ok {
			snippet = snippetFromLines(lines, err)
		}
		r := newFailureResult(assignments, messages, err, snippet)
		r.Elapsed = elapsed
		r.TraceID = traceID
		pos := ev.LastPos()
		r.EndLine, r.EndColumn = pos.Line, pos.Column
		return r
	}

	pos := ev.LastPos()
	return &ExecutionResult{
		Assignments: assignments,
		Messages:    messages,
		Elapsed:     elapsed,
		EndLine:     pos.Line,
		EndColumn:   pos.Column,
		TraceID:     traceID,
	}
}

func translateMessages(in []evaluator.Message) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = Message{Level: translateMsgLevel(m.Level), Text: m.Text, Line: m.Line, Column: m.Column}
	}
	return out
}

func translateMsgLevel(l evaluator.MsgLevel) MessageLevel {
	switch l {
	case evaluator.LevelWarn:
		return Warn
	case evaluator.LevelError:
		return Error
	default:
		return Info
	}
}

// snippetFromSource splits script directly, used whenever the caller's
// own script text is in hand (the Execute(script, ...) path).
func snippetFromSource(script string, err error) string {
	_, line, _, ok := codeAndPosition(err)
	if !ok || line <= 0 {
		return ""
	}
	return snippetFromLines(splitLines(script), err)
}

func snippetFromLines(lines []string, err error) string {
	_, line, _, ok := codeAndPosition(err)
	if !ok || line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Validate compiles script and runs the read-only analyzer over it,
// never executing any code. Unlike Execute, an unregistered function
// call is reported as a warning rather than a failure.
func (e *Engine) Validate(script string) *ValidationResult {
	block, err := e.Compile(script)
	if err != nil {
		code, line, col, ok := codeAndPosition(err)
		vr := &ValidationResult{Success: false, ErrorMessage: err.Error()}
		if ok {
			vr.ErrorCode = code
			vr.ErrorLine = line
			vr.ErrorColumn = col
		}
		return vr
	}

	res := validate.Analyze(validate.Input{
		Block:         block,
		KnownFunction: func(name string) bool { _, ok := e.functions.Resolve(name); return ok },
	})
	return newValidationResult(res)
}

// ClearCache empties the compilation cache.
func (e *Engine) ClearCache() { e.cache.Clear() }
