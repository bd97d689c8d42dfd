package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"findatex-hq/regcheck/pkg/report"
)

// Run is the stored summary of one validation call.
type Run struct {
	// ID is a random UUID assigned when the run is created.
	ID string `json:"id"`

	// Template is the registry name the document was validated against.
	Template        string `json:"template"`
	TemplateVersion string `json:"template_version,omitempty"`

	// Source is the file path or HTTP request path of the document.
	Source string `json:"source,omitempty"`

	Valid          bool `json:"valid"`
	Strict         bool `json:"strict"`
	Batch          bool `json:"batch"`
	Records        int  `json:"records"`
	InvalidRecords int  `json:"invalid_records"`
	ErrorCount     int  `json:"error_count"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	// Report is the JSON-encoded report.Report.
	Report json.RawMessage `json:"report,omitempty"`
}

// NewRun builds a Run from a finished report.
func NewRun(template string, rep *report.Report, strict bool, started time.Time, duration time.Duration) (*Run, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return &Run{
		ID:              uuid.New().String(),
		Template:        template,
		TemplateVersion: rep.TemplateVersion,
		Source:          rep.Source,
		Valid:           rep.Valid,
		Strict:          strict,
		Batch:           rep.Batch,
		Records:         rep.Records,
		InvalidRecords:  rep.InvalidRecords,
		ErrorCount:      rep.ErrorCount,
		StartedAt:       started.UTC(),
		Duration:        duration,
		Report:          data,
	}, nil
}

// DecodeReport decodes the stored report.
func (r *Run) DecodeReport() (*report.Report, error) {
	if len(r.Report) == 0 {
		return nil, fmt.Errorf("run %s has no stored report", r.ID)
	}
	var rep report.Report
	if err := json.Unmarshal(r.Report, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report of run %s: %w", r.ID, err)
	}
	return &rep, nil
}

// Query filters runs. Zero values do not filter. Results are ordered newest
// first.
type Query struct {
	Template string
	Valid    *bool
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
}

// Store persists validation runs.
type Store interface {
	// Save stores a run. Saving an existing ID is an error.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs matching q, newest first. Reports are omitted.
	List(ctx context.Context, q *Query) ([]*Run, error)

	// Count returns the number of runs matching q.
	Count(ctx context.Context, q *Query) (int64, error)

	// DeleteBefore removes runs started before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteBeyond keeps the newest keep runs and removes the rest.
	DeleteBeyond(ctx context.Context, keep int) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
