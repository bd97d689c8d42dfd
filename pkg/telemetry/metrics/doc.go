// Package metrics provides Prometheus metrics for regcheck.
//
// # Metrics
//
//   - regcheck_validation_*: runs, records, errors by kind, duration
//   - regcheck_catalog_*: load attempts and active catalog size
//   - regcheck_http_*: validation service traffic
//   - regcheck_history_*: stored and pruned runs
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordValidation("ept", res, time.Since(start))
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector, or one whose config has Enabled=false, records nothing.
package metrics
