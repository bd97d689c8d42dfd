package report

import (
	"encoding/json"
	"io"
	"sort"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/validation"
)

// Report is the stable, machine-consumable form of a validation result.
// Field names and layout are part of the public contract of the JSON
// output and the HTTP API.
type Report struct {
	Valid           bool           `json:"valid"`
	Catalog         string         `json:"catalog"`
	Template        string         `json:"template,omitempty"`
	TemplateVersion string         `json:"template_version,omitempty"`
	Source          string         `json:"source,omitempty"`
	Batch           bool           `json:"batch"`
	Records         int            `json:"records"`
	InvalidRecords  int            `json:"invalid_records"`
	ErrorCount      int            `json:"error_count"`
	Errors          []Entry        `json:"errors"`
	Summary         map[string]int `json:"summary,omitempty"`
}

// Entry is one validation error. Field is null for record-level errors;
// Record is present only in batch mode.
type Entry struct {
	Field    *string  `json:"field"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Triggers []string `json:"triggers,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Record   *int     `json:"record,omitempty"`
}

// New builds a report for res. cat may be nil when the catalog is unknown
// to the caller.
func New(cat *catalog.Catalog, res *validation.Result, source string) *Report {
	r := &Report{
		Valid:          res.Valid,
		Source:         source,
		Batch:          res.Batch,
		Records:        res.Records,
		InvalidRecords: res.InvalidRecords(),
		ErrorCount:     res.Count(),
		Errors:         make([]Entry, 0, res.Count()),
	}
	if cat != nil {
		r.Catalog = cat.Name()
		r.Template = cat.Template()
		r.TemplateVersion = cat.TemplateVersion()
	}

	for _, e := range res.Errors {
		entry := Entry{
			Kind:     string(e.Kind),
			Message:  e.Message,
			Triggers: e.Triggers,
			Rule:     e.Rule,
		}
		if e.Field != "" {
			field := e.Field
			entry.Field = &field
		}
		if e.HasRecord() {
			index := e.Record
			entry.Record = &index
		}
		r.Errors = append(r.Errors, entry)
	}

	if counts := res.KindCounts(); len(counts) > 0 {
		r.Summary = make(map[string]int, len(counts))
		for kind, n := range counts {
			r.Summary[string(kind)] = n
		}
	}
	return r
}

// FieldName returns the entry's field or "" for record-level errors.
func (e Entry) FieldName() string {
	if e.Field == nil {
		return ""
	}
	return *e.Field
}

// SummaryKinds returns the kinds in Summary in the canonical kind order.
func (r *Report) SummaryKinds() []string {
	order := make(map[string]int, len(validation.ErrorKinds))
	for i, k := range validation.ErrorKinds {
		order[string(k)] = i
	}
	kinds := make([]string, 0, len(r.Summary))
	for k := range r.Summary {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return order[kinds[i]] < order[kinds[j]]
	})
	return kinds
}

// WriteJSON writes the report as JSON.
func (r *Report) WriteJSON(w io.Writer, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}

// MarshalResult is a shortcut for callers that only need JSON bytes.
func MarshalResult(cat *catalog.Catalog, res *validation.Result, source string) ([]byte, error) {
	return json.Marshal(New(cat, res, source))
}
