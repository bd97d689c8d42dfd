package metrics

import (
	"findatex-hq/regcheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the run history store.
//
// Metrics:
//   - regcheck_history_runs: runs currently stored
//   - regcheck_history_pruned_total: runs removed by retention
type HistoryMetrics struct {
	runs        prometheus.Gauge
	prunedTotal prometheus.Counter
}

// NewHistoryMetrics creates and registers history metrics.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		runs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "runs",
			Help:      "Number of validation runs currently stored",
		}),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "history",
			Name:      "pruned_total",
			Help:      "Total number of runs removed by retention",
		}),
	}

	registry.MustRegister(hm.runs, hm.prunedTotal)
	return hm
}

// SetRuns sets the stored run gauge.
func (hm *HistoryMetrics) SetRuns(n int64) {
	hm.runs.Set(float64(n))
}

// RecordPruned adds n to the pruned counter.
func (hm *HistoryMetrics) RecordPruned(n int64) {
	if n > 0 {
		hm.prunedTotal.Add(float64(n))
	}
}
