package history

import (
	"context"
	"time"

	"findatex-hq/regcheck/pkg/report"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/telemetry/metrics"
)

// Recorder saves finished validations to a Store. A nil *Recorder records
// nothing, so callers need not check whether history is enabled.
type Recorder struct {
	store   Store
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewRecorder creates a recorder for store.
func NewRecorder(store Store, logger *logging.Logger, collector *metrics.Collector) *Recorder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Recorder{store: store, logger: logger.Component("history"), metrics: collector}
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	if r == nil {
		return nil
	}
	return r.store
}

// Record stores rep and returns the new run ID. Failures are logged and
// returned, but never affect the validation outcome.
func (r *Recorder) Record(ctx context.Context, template string, rep *report.Report, strict bool, started time.Time) (string, error) {
	if r == nil {
		return "", nil
	}
	run, err := NewRun(template, rep, strict, started, time.Since(started))
	if err != nil {
		r.logger.WarnContext(ctx, "failed to build history run", "error", err)
		return "", err
	}
	if err := r.store.Save(ctx, run); err != nil {
		r.logger.WarnContext(ctx, "failed to save history run", "error", err)
		return "", err
	}
	if n, err := r.store.Count(ctx, nil); err == nil {
		r.metrics.SetHistoryRuns(n)
	}
	r.logger.DebugContext(ctx, "run recorded", "run_id", run.ID, "template", template, "valid", run.Valid)
	return run.ID, nil
}
