package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var csvHeader = []string{"record", "field", "kind", "message", "triggers", "rule"}

// WriteCSV writes one row per error. The record column is empty in
// single-record mode.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := r.writeCSVRows(cw, nil); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// writeCSVRows writes the error rows, each prefixed with prefix.
func (r *Report) writeCSVRows(cw *csv.Writer, prefix []string) error {
	for _, e := range r.Errors {
		record := ""
		if e.Record != nil {
			record = strconv.Itoa(*e.Record)
		}
		row := append(append([]string(nil), prefix...),
			record, e.FieldName(), e.Kind, e.Message, strings.Join(e.Triggers, ";"), e.Rule)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
