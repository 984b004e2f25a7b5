// Package output provides formatted output rendering for resolved ranges,
// validated instants and picker state. It supports text, JSON, YAML and
// table formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/superdate/internal/datefmt"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// RangeRow is one rendered range: a resolved quick select, a checked
// range, or a result reported by the picker.
type RangeRow struct {
	Label   string    `json:"label,omitempty" yaml:"label,omitempty"`
	Start   time.Time `json:"start" yaml:"start"`
	End     time.Time `json:"end" yaml:"end"`
	Invalid bool      `json:"is_invalid" yaml:"is_invalid"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
}

// InstantRow is a validated instant and the text it came from.
type InstantRow struct {
	Input   string    `json:"input" yaml:"input"`
	Instant time.Time `json:"instant,omitzero" yaml:"instant,omitempty"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
	Kind    string    `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	spec     datefmt.Spec
	colorize bool
}

// New creates a new output Writer. Text and table output render instants
// with datefmt.Default until WithDateFormat is called.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format, spec: datefmt.MustCompile(datefmt.Default)}
}

// WithDateFormat sets the pattern used by text and table output.
func (wr *Writer) WithDateFormat(spec datefmt.Spec) *Writer {
	wr.spec = spec
	return wr
}

// WithColor enables coloring of invalid rows according to mode.
func (wr *Writer) WithColor(mode ColorMode) *Writer {
	wr.colorize = shouldColorize(mode, wr.w)
	return wr
}

// WriteRow outputs a single range in the configured format.
func (wr *Writer) WriteRow(row RangeRow) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(row)
	case FormatYAML:
		return wr.WriteYAML(row)
	default:
		return wr.WriteRows([]RangeRow{row})
	}
}

// WriteRows outputs a list of ranges in the configured format.
func (wr *Writer) WriteRows(rows []RangeRow) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(rows)
	case FormatYAML:
		return wr.WriteYAML(rows)
	case FormatTable:
		return wr.writeRowsTable(rows)
	default:
		for _, row := range rows {
			if _, err := fmt.Fprintln(wr.w, wr.FormatRow(row)); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteInstant outputs the outcome of validating one input.
func (wr *Writer) WriteInstant(row InstantRow) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(row)
	case FormatYAML:
		return wr.WriteYAML(row)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INPUT\tINSTANT\tERROR")
		fmt.Fprintln(tw, "-----\t-------\t-----")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Input, wr.formatInstant(row.Instant), row.Error)
		return tw.Flush()
	default:
		if row.Error != "" {
			_, err := fmt.Fprintln(wr.w, wr.paint(true, row.Error))
			return err
		}
		_, err := fmt.Fprintln(wr.w, row.Instant.Format(time.RFC3339Nano))
		return err
	}
}

// FormatRow renders a row as a single text line.
func (wr *Writer) FormatRow(row RangeRow) string {
	var b strings.Builder
	if row.Label != "" {
		b.WriteString(row.Label)
		b.WriteString(": ")
	}
	b.WriteString(wr.formatInstant(row.Start))
	b.WriteString(" -> ")
	b.WriteString(wr.formatInstant(row.End))
	if row.Invalid {
		b.WriteString(" [invalid]")
		if row.Message != "" {
			b.WriteString(" ")
			b.WriteString(row.Message)
		}
	}
	return wr.paint(row.Invalid, b.String())
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as a YAML document.
func (wr *Writer) WriteYAML(v interface{}) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (wr *Writer) writeRowsTable(rows []RangeRow) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tSTART\tEND\tSTATUS\tMESSAGE")
	fmt.Fprintln(tw, "-----\t-----\t---\t------\t-------")

	for _, row := range rows {
		status := "valid"
		if row.Invalid {
			status = "invalid"
		}

		msg := row.Message
		if len(msg) > 80 {
			msg = msg[:77] + "..."
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Label, wr.formatInstant(row.Start), wr.formatInstant(row.End), status, msg)
	}

	return tw.Flush()
}

func (wr *Writer) formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return wr.spec.Format(t)
}
