// Package telemetry groups regcheck's observability packages.
//
//   - logging: structured logging on log/slog with validation context fields
//   - metrics: Prometheus metrics for validation runs, catalogs, HTTP and history
//   - health: liveness, readiness and version endpoints
package telemetry
