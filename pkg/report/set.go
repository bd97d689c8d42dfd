package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Set is the reports of one multi-document run, in input order.
type Set []*Report

// Valid reports whether every document is valid.
func (s Set) Valid() bool {
	for _, r := range s {
		if !r.Valid {
			return false
		}
	}
	return true
}

// InvalidCount returns the number of invalid documents.
func (s Set) InvalidCount() int {
	n := 0
	for _, r := range s {
		if !r.Valid {
			n++
		}
	}
	return n
}

// WriteText writes each report followed by a one-line total.
func (s Set) WriteText(w io.Writer) error {
	for _, r := range s {
		if err := r.WriteText(w); err != nil {
			return err
		}
	}
	if len(s) < 2 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%d of %s valid\n", len(s)-s.InvalidCount(), plural(len(s), "document"))
	return err
}

// WriteCSV writes the rows of every report with a leading source column.
func (s Set) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"source"}, csvHeader...)); err != nil {
		return err
	}
	for _, r := range s {
		if err := r.writeCSVRows(cw, []string{r.Source}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJUnit writes one test suite per document.
func (s Set) WriteJUnit(w io.Writer) error {
	suites := make([]junitSuite, 0, len(s))
	for _, r := range s {
		suites = append(suites, r.junitSuite())
	}
	return writeJUnit(w, suites)
}
