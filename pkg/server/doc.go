// Package server exposes the validation engine over HTTP.
//
// Routes:
//
//	POST /v1/validate/{template}   validate a JSON or YAML document
//	GET  /v1/templates             list registered catalogs
//	GET  /v1/templates/{template}  describe one catalog's fields and rules
//	GET  /v1/runs                  list stored runs (history enabled)
//	GET  /v1/runs/{id}             one stored run with its report
//	GET  /health, /ready, /version
//	GET  /metrics                  Prometheus metrics (path configurable)
//
// The request body of /v1/validate is decoded by Content-Type
// (application/json, application/yaml), falling back to sniffing. A single
// mapping is validated as one record; a list is validated as a batch. The
// "strict" query parameter overrides validation.strict. The response is
// always the JSON report, with status 200 whether or not the document is
// valid.
//
// Basic usage:
//
//	mgr := registry.NewManager(cfg.Schemas, registry.WithLogger(logger))
//	if err := mgr.Load(); err != nil {
//	    return err
//	}
//	srv := server.New(cfg, mgr.Registry(), server.WithLogger(logger))
//	return srv.Start(ctx)
package server
