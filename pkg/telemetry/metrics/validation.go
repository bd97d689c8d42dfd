package metrics

import (
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks validation runs.
//
// Metrics:
//   - regcheck_validation_runs_total: runs by template and result (valid, invalid)
//   - regcheck_validation_records_total: records checked by template
//   - regcheck_validation_invalid_records_total: records with at least one error
//   - regcheck_validation_errors_total: errors by template and kind
//   - regcheck_validation_duration_seconds: run duration by template
type ValidationMetrics struct {
	runsTotal           *prometheus.CounterVec
	recordsTotal        *prometheus.CounterVec
	invalidRecordsTotal *prometheus.CounterVec
	errorsTotal         *prometheus.CounterVec
	duration            *prometheus.HistogramVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"template", "result"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "records_total",
				Help:      "Total number of records validated",
			},
			[]string{"template"},
		),
		invalidRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "invalid_records_total",
				Help:      "Total number of records with at least one error",
			},
			[]string{"template"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "errors_total",
				Help:      "Total number of validation errors by kind",
			},
			[]string{"template", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"template"},
		),
	}

	registry.MustRegister(
		vm.runsTotal,
		vm.recordsTotal,
		vm.invalidRecordsTotal,
		vm.errorsTotal,
		vm.duration,
	)

	return vm
}

// Record records one run.
func (vm *ValidationMetrics) Record(template string, res *validation.Result, duration time.Duration) {
	result := "invalid"
	if res.Valid {
		result = "valid"
	}
	vm.runsTotal.WithLabelValues(template, result).Inc()
	vm.recordsTotal.WithLabelValues(template).Add(float64(res.Records))
	vm.invalidRecordsTotal.WithLabelValues(template).Add(float64(res.InvalidRecords()))
	for kind, n := range res.KindCounts() {
		vm.errorsTotal.WithLabelValues(template, string(kind)).Add(float64(n))
	}
	vm.duration.WithLabelValues(template).Observe(duration.Seconds())
}
