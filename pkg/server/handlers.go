package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/reader"
	"findatex-hq/regcheck/pkg/registry"
	"findatex-hq/regcheck/pkg/report"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/validation"
)

// RunIDHeader names the stored history run of a validation.
const RunIDHeader = "X-Run-ID"

// handleValidate validates the request body against a named catalog. The
// body is JSON or YAML (by Content-Type, else sniffed) holding one record
// or a list of records. An invalid document is still a 200: the report
// carries the errors.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("template")
	entry, err := s.registry.Entry(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_template", err.Error())
		return
	}

	query := r.URL.Query()
	strict := s.config.Validation.Strict
	if v := query.Get("strict"); v != "" {
		strict, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter",
				fmt.Sprintf("strict: invalid boolean %q", v))
			return
		}
	}
	source := query.Get("source")
	if source == "" {
		source = "request:" + logging.GetRequestID(r.Context())
	}

	ctx := logging.WithSource(logging.WithTemplate(r.Context(), entry.Name), source)

	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	subject, err := reader.Read(body, reader.FormatFromContentType(r.Header.Get("Content-Type")), source)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_document", err.Error())
		return
	}

	started := time.Now()
	v := validation.NewValidator(entry.Catalog,
		validation.WithStrict(strict),
		validation.WithWorkers(s.config.Validation.Workers),
	)
	res := v.Validate(subject)
	s.metrics.RecordValidation(entry.Name, res, time.Since(started))

	rep := report.New(entry.Catalog, res, source)
	if runID, err := s.recorder.Record(ctx, entry.Name, rep, strict, started); err == nil && runID != "" {
		w.Header().Set(RunIDHeader, runID)
		ctx = logging.WithRunID(ctx, runID)
	}

	s.logger.DebugContext(ctx, "document validated",
		"valid", res.Valid,
		"records", subject.Len(),
		"errors", res.Count(),
	)
	writeJSON(w, http.StatusOK, rep)
}

// TemplateSummary describes a registered catalog.
type TemplateSummary struct {
	Name            string    `json:"name"`
	Catalog         string    `json:"catalog"`
	Template        string    `json:"template"`
	TemplateVersion string    `json:"template_version,omitempty"`
	Description     string    `json:"description,omitempty"`
	Fields          int       `json:"fields"`
	Rules           int       `json:"rules"`
	Groups          int       `json:"groups"`
	Source          string    `json:"source"`
	Builtin         bool      `json:"builtin"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// TemplateList is the body of GET /v1/templates.
type TemplateList struct {
	Version   string            `json:"version"`
	Templates []TemplateSummary `json:"templates"`
}

func summarize(e *registry.Entry) TemplateSummary {
	c := e.Catalog
	return TemplateSummary{
		Name:            e.Name,
		Catalog:         c.Name(),
		Template:        c.Template(),
		TemplateVersion: c.TemplateVersion(),
		Description:     c.Description(),
		Fields:          c.Len(),
		Rules:           len(c.Rules()),
		Groups:          len(c.Groups()),
		Source:          e.Source,
		Builtin:         e.Builtin,
		LoadedAt:        e.LoadedAt,
	}
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.Entries()
	list := TemplateList{
		Version:   s.registry.Version(),
		Templates: make([]TemplateSummary, 0, len(entries)),
	}
	for _, e := range entries {
		list.Templates = append(list.Templates, summarize(e))
	}
	writeJSON(w, http.StatusOK, list)
}

// TemplateDetail is the body of GET /v1/templates/{template}.
type TemplateDetail struct {
	TemplateSummary
	FieldDefs []FieldInfo `json:"field_definitions"`
	GroupDefs []GroupInfo `json:"exclusive_groups,omitempty"`
}

// FieldInfo describes one catalog field.
type FieldInfo struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Required    bool       `json:"required"`
	Description string     `json:"description,omitempty"`
	Values      []any      `json:"values,omitempty"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	Pattern     string     `json:"pattern,omitempty"`
	MinLength   *int       `json:"min_length,omitempty"`
	MaxLength   *int       `json:"max_length,omitempty"`
	Rules       []RuleInfo `json:"rules,omitempty"`
}

// RuleInfo describes a conditional rule.
type RuleInfo struct {
	Name        string `json:"name"`
	When        string `json:"when"`
	Requirement string `json:"then"`
	Value       any    `json:"value,omitempty"`
}

// GroupInfo describes an exclusive group.
type GroupInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	entry, err := s.registry.Entry(r.PathValue("template"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_template", err.Error())
		return
	}

	detail := TemplateDetail{TemplateSummary: summarize(entry)}
	for _, f := range entry.Catalog.Fields() {
		detail.FieldDefs = append(detail.FieldDefs, fieldInfo(f))
	}
	for _, g := range entry.Catalog.Groups() {
		detail.GroupDefs = append(detail.GroupDefs, GroupInfo{Name: g.Name, Fields: g.Fields})
	}
	writeJSON(w, http.StatusOK, detail)
}

func fieldInfo(f *catalog.FieldDefinition) FieldInfo {
	info := FieldInfo{
		ID:          f.ID,
		Type:        string(f.Kind),
		Required:    f.Required,
		Description: f.Description,
		Values:      f.Enum,
		Min:         f.Min,
		Max:         f.Max,
		MinLength:   f.MinLength,
		MaxLength:   f.MaxLength,
	}
	if f.Pattern != nil {
		info.Pattern = f.Pattern.String()
	}
	for _, rule := range f.Rules {
		info.Rules = append(info.Rules, RuleInfo{
			Name:        rule.Name,
			When:        fmt.Sprintf("%s %s %v", rule.Trigger.Field, rule.Trigger.Operator, rule.Trigger.Value),
			Requirement: string(rule.Requirement),
			Value:       rule.Value,
		})
	}
	return info
}

// RunList is the body of GET /v1/runs.
type RunList struct {
	Total int64          `json:"total"`
	Runs  []*history.Run `json:"runs"`
}

// handleRuns lists stored runs, newest first. Query parameters: template,
// valid, since, until (RFC 3339), limit (default 50) and offset.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	q, err := parseRunQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	runs, err := s.history.List(r.Context(), q)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to list runs")
		return
	}
	count := *q
	count.Limit, count.Offset = 0, 0
	total, err := s.history.Count(r.Context(), &count)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to count runs", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to count runs")
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	writeJSON(w, http.StatusOK, RunList{Total: total, Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown_run", err.Error())
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to get run", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

const defaultRunLimit = 50

func parseRunQuery(r *http.Request) (*history.Query, error) {
	values := r.URL.Query()
	q := &history.Query{Template: values.Get("template"), Limit: defaultRunLimit}

	if v := values.Get("valid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("valid: invalid boolean %q", v)
		}
		q.Valid = &b
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &q.Since}, {"until", &q.Until}} {
		if v := values.Get(p.name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid RFC 3339 time %q", p.name, v)
			}
			*p.dst = &t
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &q.Limit}, {"offset", &q.Offset}} {
		if v := values.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%s: invalid non-negative integer %q", p.name, v)
			}
			*p.dst = n
		}
	}
	return q, nil
}
