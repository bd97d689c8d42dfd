package metrics

import (
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the Prometheus registry and every regcheck metric.
// A nil *Collector is valid and records nothing, so components can take one
// unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation *ValidationMetrics
	catalogs   *CatalogMetrics
	http       *HTTPMetrics
	history    *HistoryMetrics
}

// NewCollector creates a metrics collector. If registry is nil a fresh
// registry with the Go and process collectors is created.
//
// Example:
//
//	cfg := config.Default().Telemetry.Metrics
//	collector := metrics.NewCollector(&cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		validation: NewValidationMetrics(cfg, registry),
		catalogs:   NewCatalogMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
		history:    NewHistoryMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordValidation records one finished validation call against the named
// catalog.
//
// Example:
//
//	start := time.Now()
//	res := v.Validate(subject)
//	collector.RecordValidation("ept", res, time.Since(start))
func (c *Collector) RecordValidation(template string, res *validation.Result, duration time.Duration) {
	if !c.enabled() || res == nil {
		return
	}
	c.validation.Record(template, res, duration)
}

// RecordCatalogLoad records a catalog (re)load attempt. fields and rules are
// ignored when err is non-nil.
func (c *Collector) RecordCatalogLoad(template string, fields, rules int, err error) {
	if !c.enabled() {
		return
	}
	c.catalogs.RecordLoad(template, fields, rules, err)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.http.Record(route, code, duration)
}

// RecordHistoryPruned records runs removed by retention.
func (c *Collector) RecordHistoryPruned(n int64) {
	if !c.enabled() {
		return
	}
	c.history.RecordPruned(n)
}

// SetHistoryRuns sets the number of stored runs.
func (c *Collector) SetHistoryRuns(n int64) {
	if !c.enabled() {
		return
	}
	c.history.SetRuns(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
