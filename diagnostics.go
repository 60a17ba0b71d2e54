package easyexpr

import (
	"fmt"
	"strings"

	box "github.com/Delta456/box-cli-maker/v2"
	"github.com/alexeyco/simpletable"
)

// DiagnosticReport renders an ExecutionResult as a boxed, human-readable
// report: the script (word-wrapped), a table of messages in program
// order, and, on failure, the error code/position/snippet. It is meant
// for a developer staring at a failing script, not for machine parsing.
func DiagnosticReport(script string, r *ExecutionResult) string {
	bx := box.New(box.Config{Px: 2, Py: 1, Type: "Double", Color: "Cyan", TitlePos: "Top", ContentAlign: "Left"})

	s := strings.Builder{}
	s.WriteString("Script:\n")
	s.WriteString("-------\n")
	s.WriteString(wordWrap(script, 100))
	s.WriteString("\n\n")

	s.WriteString("Messages:\n")
	s.WriteString("---------\n")
	s.WriteString(messageTable(r.Messages).String())

	if r.HasError {
		s.WriteString("\n\n")
		s.WriteString("Error:\n")
		s.WriteString("------\n")
		s.WriteString(fmt.Sprintf("[%s] %s at %d:%d\n", r.ErrorCode, r.ErrorMessage, r.ErrorLine, r.ErrorColumn))
		if r.ErrorSnippet != "" {
			s.WriteString(fmt.Sprintf("  %s\n", r.ErrorSnippet))
		}
	}

	return bx.String("EASYEXPR EXECUTION DIAGNOSTIC REPORT", s.String())
}

func messageTable(messages []Message) *simpletable.Table {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Loc"},
			{Align: simpletable.AlignCenter, Text: "Level"},
			{Align: simpletable.AlignCenter, Text: "Text"},
		},
	}
	for _, m := range messages {
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Align: simpletable.AlignRight, Text: fmt.Sprintf("%d:%d", m.Line, m.Column)},
			{Text: m.Level.String()},
			{Text: m.Text},
		})
	}
	table.SetStyle(simpletable.StyleUnicode)
	return table
}

func wordWrap(text string, lineWidth int) string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return text
	}
	wrapped := words[0]
	spaceLeft := lineWidth - len(wrapped)
	for _, word := range words[1:] {
		if len(word)+1 > spaceLeft {
			wrapped += "\n" + word
			spaceLeft = lineWidth - len(word)
		} else {
			wrapped += " " + word
			spaceLeft -= 1 + len(word)
		}
	}
	return wrapped
}
