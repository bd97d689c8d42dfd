package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes a human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder

	name := r.Catalog
	if r.Template != "" {
		name = strings.TrimSpace(r.Template + " " + r.TemplateVersion)
	}
	source := r.Source
	if source == "" {
		source = "<input>"
	}

	if r.Valid {
		sb.WriteString(fmt.Sprintf("✓ %s is valid against %s (%s)\n", source, name, plural(r.Records, "record")))
		_, err := io.WriteString(w, sb.String())
		return err
	}

	sb.WriteString(fmt.Sprintf("✗ %s is invalid against %s: %s", source, name, plural(r.ErrorCount, "error")))
	if r.Batch {
		sb.WriteString(fmt.Sprintf(" in %d of %s", r.InvalidRecords, plural(r.Records, "record")))
	}
	sb.WriteString("\n\n")

	for _, e := range r.Errors {
		sb.WriteString("  ")
		if e.Record != nil {
			sb.WriteString(fmt.Sprintf("[record %d] ", *e.Record))
		}
		if e.Field != nil {
			sb.WriteString(*e.Field)
			sb.WriteString(": ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	}

	if len(r.Summary) > 0 {
		sb.WriteString("\nSummary:\n")
		for _, kind := range r.SummaryKinds() {
			sb.WriteString(fmt.Sprintf("  %-32s %d\n", kind, r.Summary[kind]))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
