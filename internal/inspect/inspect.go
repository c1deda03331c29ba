// Package inspect renders a human readable view of the derived completion
// vocabulary.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/geodex-io/geodex/internal/completion"
)

const (
	colorYellow = lipgloss.Color("11") // Source names
	colorCyan   = lipgloss.Color("12") // Join-derived composites
	colorGray   = lipgloss.Color("8")  // Labels, raw fields, meta info
)

var (
	nameStyle      = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle       = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	rawStyle       = lipgloss.NewStyle().Foreground(colorGray)
	compositeStyle = lipgloss.NewStyle().Foreground(colorCyan)
	fieldStyle     = lipgloss.NewStyle()
)

// Render writes one block per source, in manifest order.
func Render(w io.Writer, registry *completion.Registry) {
	var output strings.Builder

	for i, entry := range registry.Entries() {
		if i > 0 {
			output.WriteString("\n")
		}
		renderEntry(&output, entry)
	}

	fmt.Fprint(w, output.String())
}

func renderEntry(output *strings.Builder, entry *completion.Entry) {
	meta := fmt.Sprintf("(%d fields)", len(entry.Vocabulary()))
	output.WriteString(nameStyle.Render(entry.Name) + " " + dimStyle.Render(meta) + "\n")
	output.WriteString("  " + labelStyle.Render("headers:") + "      " + renderFields(entry.Headers) + "\n")
	if len(entry.AddHeaders) > 0 {
		output.WriteString("  " + labelStyle.Render("add_headers:") + "  " + renderFields(entry.AddHeaders) + "\n")
	}
}

func renderFields(fields []string) string {
	if len(fields) == 0 {
		return dimStyle.Render("(none)")
	}
	return strings.Join(lo.Map(fields, func(field string, _ int) string {
		return renderField(field)
	}), "  ")
}

func renderField(field string) string {
	switch {
	case strings.HasSuffix(field, completion.RawSuffix):
		return rawStyle.Render(field)
	case strings.Contains(field, ":"):
		return compositeStyle.Render(field)
	default:
		return fieldStyle.Render(field)
	}
}
