// Package view provides output formatting for parsoid commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
)

// Format represents an output format for listings.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ValidFormats returns the accepted listing formats.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidateFormat checks a listing format. Empty means table.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range ValidFormats() {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(ValidFormats(), ", "))
}

// Renderer writes command output. Results go to the output writer;
// diagnostics and status lines go to the message writer.
type Renderer struct {
	format Format
	out    io.Writer
	msg    io.Writer
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	if format == "" {
		format = FormatTable
	}
	return &Renderer{format: format, out: os.Stdout, msg: os.Stderr}
}

// SetWriter sets the output writer and the message writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.out = w
	r.msg = w
}

// SetMessageWriter sets only the writer for diagnostics and status lines.
func (r *Renderer) SetMessageWriter(w io.Writer) {
	r.msg = w
}

// RenderTable renders rows under headers.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	switch r.format {
	case FormatJSON:
		r.renderTableAsJSON(headers, rows)
	case FormatPlain:
		r.renderTableAsPlain(rows)
	default:
		widths := make([]int, len(headers))
		for i, h := range headers {
			widths[i] = len(h)
		}
		for _, row := range rows {
			for i, v := range row {
				if i < len(widths) && len(v) > widths[i] {
					widths[i] = len(v)
				}
			}
		}
		bold := color.New(color.Bold)
		r.renderRow(headers, widths, bold.Sprint)
		for _, row := range rows {
			r.renderRow(row, widths, fmt.Sprint)
		}
	}
}

func (r *Renderer) renderRow(row []string, widths []int, paint func(...any) string) {
	var sb strings.Builder
	for i, v := range row {
		if i > 0 {
			sb.WriteString("  ")
		}
		if i < len(row)-1 && i < len(widths) {
			v = fmt.Sprintf("%-*s", widths[i], v)
		}
		sb.WriteString(v)
	}
	fmt.Fprintln(r.out, paint(sb.String()))
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.out, string(data))
}

func (r *Renderer) renderTableAsPlain(rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(r.out, strings.Join(row, "\t"))
	}
}

// RenderJSON renders an object as indented JSON.
func (r *Renderer) RenderJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.out, text)
}

// RenderKeyValue renders a key-value pair.
func (r *Renderer) RenderKeyValue(key, value string) {
	if r.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{key: value})
		fmt.Fprintln(r.out, string(data))
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintf(r.out, "%-10s", key+":")
	fmt.Fprintln(r.out, value)
}

// Diagnostics prints one line per diagnostic.
func (r *Renderer) Diagnostics(diags []diag.Diagnostic) {
	yellow := color.New(color.FgYellow)
	dim := color.New(color.Faint)
	for _, d := range diags {
		yellow.Fprintf(r.msg, "! %s: ", d.Kind)
		fmt.Fprint(r.msg, d.Message)
		if d.Title != "" {
			dim.Fprintf(r.msg, " (in %s)", d.Title)
		}
		fmt.Fprintln(r.msg)
	}
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintln(r.msg, "✓ "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.msg, "✗ "+msg)
}
