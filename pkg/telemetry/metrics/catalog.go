package metrics

import (
	"findatex-hq/regcheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks catalog loading and hot reloads.
//
// Metrics:
//   - regcheck_catalog_reloads_total: load attempts by template and status (success, error)
//   - regcheck_catalog_fields: field count of the active catalog
//   - regcheck_catalog_rules: conditional rule count of the active catalog
type CatalogMetrics struct {
	reloadsTotal *prometheus.CounterVec
	fields       *prometheus.GaugeVec
	rules        *prometheus.GaugeVec
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "catalog",
				Name:      "reloads_total",
				Help:      "Total number of catalog load attempts",
			},
			[]string{"template", "status"},
		),
		fields: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "catalog",
				Name:      "fields",
				Help:      "Number of fields in the active catalog",
			},
			[]string{"template"},
		),
		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "catalog",
				Name:      "rules",
				Help:      "Number of conditional rules in the active catalog",
			},
			[]string{"template"},
		),
	}

	registry.MustRegister(cm.reloadsTotal, cm.fields, cm.rules)
	return cm
}

// RecordLoad records a load attempt. A failed load leaves the gauges at the
// previous catalog's values since that catalog stays active.
func (cm *CatalogMetrics) RecordLoad(template string, fields, rules int, err error) {
	if err != nil {
		cm.reloadsTotal.WithLabelValues(template, "error").Inc()
		return
	}
	cm.reloadsTotal.WithLabelValues(template, "success").Inc()
	cm.fields.WithLabelValues(template).Set(float64(fields))
	cm.rules.WithLabelValues(template).Set(float64(rules))
}
