package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human-readable text (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is one row per item.
	FormatCSV OutputFormat = "csv"
	// FormatJUnit is JUnit XML for CI test reporters.
	FormatJUnit OutputFormat = "junit"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV, FormatJUnit:
		return f, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unknown output format %q (want text, json, csv or junit)", s))
	}
}

// Types that render themselves implement these. report.Report implements
// all three.
type (
	TextWriter  interface{ WriteText(w io.Writer) error }
	CSVWriter   interface{ WriteCSV(w io.Writer) error }
	JUnitWriter interface{ WriteJUnit(w io.Writer) error }
)

// Formatter writes command output in one format.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter uses WriteText when data provides it, else %v.
type TextFormatter struct{}

func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	if tw, ok := data.(TextWriter); ok {
		return tw.WriteText(w)
	}
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter encodes data with encoding/json.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter uses WriteCSV when data provides it. Plain [][]string rows
// are written after Headers.
type CSVFormatter struct {
	Headers []string
}

func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	if cw, ok := data.(CSVWriter); ok {
		return cw.WriteCSV(w)
	}
	rows, ok := data.([][]string)
	if !ok {
		return fmt.Errorf("csv output not supported for %T", data)
	}

	csvWriter := csv.NewWriter(w)
	if len(f.Headers) > 0 {
		if err := csvWriter.Write(f.Headers); err != nil {
			return err
		}
	}
	if err := csvWriter.WriteAll(rows); err != nil {
		return err
	}
	return csvWriter.Error()
}

// JUnitFormatter requires data to implement JUnitWriter.
type JUnitFormatter struct{}

func (f *JUnitFormatter) FormatTo(w io.Writer, data any) error {
	jw, ok := data.(JUnitWriter)
	if !ok {
		return fmt.Errorf("junit output not supported for %T", data)
	}
	return jw.WriteJUnit(w)
}

// NewFormatter creates a formatter for format. Unknown formats get text.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	case FormatJUnit:
		return &JUnitFormatter{}
	default:
		return &TextFormatter{}
	}
}
