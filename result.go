package easyexpr

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Message is one diagnostic entry appended by Msg or a failed Assert.
type Message struct {
	Level  MessageLevel
	Text   string
	Line   int
	Column int
}

// MessageLevel is the severity of a Message.
type MessageLevel int

const (
	Info MessageLevel = iota
	Warn
	Error
)

func (l MessageLevel) String() string {
	switch l {
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ExecutionResult is the outcome of one Execute call.
type ExecutionResult struct {
	// Assignments holds every field a Set statement committed, keyed by
	// field name (insertion order is irrelevant).
	Assignments map[string]Value

	// Messages holds every Msg/Assert diagnostic, in program order.
	Messages []Message

	Elapsed  time.Duration
	EndLine  int
	EndColumn int

	// TraceID correlates this result with external logs. Empty unless
	// Options.EnableTracing is set.
	TraceID string

	HasError     bool
	ErrorMessage string
	ErrorLine    int
	ErrorColumn  int
	ErrorSnippet string
	ErrorCode    Code
}

// String renders a compact summary table, in the style of the engine's
// other diagnostic renderers.
func (r *ExecutionResult) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nEXECUTION RESULT\n")
	tw.AppendHeader(table.Row{"Field", "Value"})

	names := make([]string, 0, len(r.Assignments))
	for name := range r.Assignments {
		names = append(names, name)
	}
	for _, name := range names {
		tw.AppendRow(table.Row{name, r.Assignments[name].String()})
	}

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	out := tw.Render()
	for _, m := range r.Messages {
		out += fmt.Sprintf("\n[%s] %s (%d:%d)", m.Level, m.Text, m.Line, m.Column)
	}
	if r.HasError {
		out += fmt.Sprintf("\nERROR [%s] %s (%d:%d)", r.ErrorCode, r.ErrorMessage, r.ErrorLine, r.ErrorColumn)
		if r.ErrorSnippet != "" {
			out += fmt.Sprintf("\n  %s", r.ErrorSnippet)
		}
	}
	return out
}

// newFailureResult builds an ExecutionResult representing a compile or
// evaluation failure, preserving any assignments/messages accumulated up
// to the failure point.
func newFailureResult(assignments map[string]Value, messages []Message, err error, snippet string) *ExecutionResult {
	code, line, col, ok := codeAndPosition(err)
	r := &ExecutionResult{
		Assignments:  assignments,
		Messages:     messages,
		HasError:     true,
		ErrorMessage: err.Error(),
		ErrorSnippet: snippet,
	}
	if ok {
		r.ErrorCode = code
		r.ErrorLine = line
		r.ErrorColumn = col
	}
	return r
}
