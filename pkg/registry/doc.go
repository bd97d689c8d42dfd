// Package registry keeps the set of named catalogs that validation runs
// against.
//
// A Manager loads the built-in EPT and TPT catalogs plus any schema files
// from config.SchemasConfig.Paths into a Registry. A file whose catalog
// name matches a built-in replaces it. Names are looked up the way
// templates.Key normalizes them, so "EPT" and "findatex-ept" are the same
// catalog.
//
// # Hot Reload
//
// With schemas.watch enabled, Manager.Watch uses fsnotify to follow the
// configured paths. Bursts of events are debounced and then every file is
// reloaded. A file that no longer compiles keeps its previous catalog and
// the error is logged and counted in regcheck_catalog_reloads_total; the
// other catalogs are swapped in atomically.
//
//	mgr := registry.NewManager(cfg.Schemas, registry.WithLogger(logger), registry.WithMetrics(collector))
//	if err := mgr.Load(); err != nil {
//	    return err
//	}
//	go mgr.Watch(ctx)
//	cat, err := mgr.Registry().Get("ept")
package registry
