// Package health provides liveness, readiness and version endpoints for the
// regcheck service.
//
//   - /health: the process is up
//   - /ready: every registered check passes (catalogs loaded, history store reachable)
//   - /version: build information
//
// Usage:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("catalogs", func(ctx context.Context) error {
//	    if reg.Len() == 0 {
//	        return errors.New("no catalogs loaded")
//	    }
//	    return nil
//	})
//	health.Register(mux, checker, version, commit, buildTime)
package health
