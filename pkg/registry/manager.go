package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/telemetry/metrics"
)

// Manager loads catalogs into a Registry and keeps them current. It
// coordinates the loader, the registry and an optional file watcher.
type Manager struct {
	cfg      config.SchemasConfig
	loader   *Loader
	registry *Registry
	logger   *logging.Logger
	metrics  *metrics.Collector

	// mu serializes loads so a watcher reload never interleaves with an
	// explicit one.
	mu            sync.Mutex
	lastLoadTime  time.Time
	lastLoadError error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) { m.logger = logger.Component("registry") }
}

// WithMetrics sets the collector used for catalog load metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

// NewManager creates a manager for the given schema configuration.
func NewManager(cfg config.SchemasConfig, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		loader:   NewLoader(cfg.Builtin, cfg.Paths),
		registry: New(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the managed registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Load performs the initial load. Any schema that fails to load is an
// error and nothing is registered.
func (m *Manager) Load() error {
	return m.load(false)
}

// Reload re-reads every schema file. A file that fails to load keeps its
// previously registered catalogs; the rest of the set is swapped in
// atomically. The returned error joins every per-file failure.
func (m *Manager) Reload() error {
	return m.load(true)
}

// LastLoad returns when the registry was last updated and the error of
// the most recent load attempt.
func (m *Manager) LastLoad() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadTime, m.lastLoadError
}

func (m *Manager) load(keepPrevious bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	previous := m.registry.Entries()
	bySource := make(map[string]*Entry, len(previous))
	for _, e := range previous {
		bySource[e.Source] = e
	}

	builtins, err := m.loader.Builtins()
	if err != nil {
		m.lastLoadError = err
		return err
	}

	next := make(map[string]*Entry)
	for _, e := range builtins {
		next[e.Name] = e
	}

	var loadErrs []error
	var failed []string
	files, pathErrs := m.loader.Files()
	for _, pe := range pathErrs {
		loadErrs = append(loadErrs, pe)
		failed = append(failed, pe.Source)
	}

	fromFile := make(map[string]string)
	for _, path := range files {
		e, err := m.loader.LoadFile(path, bySource[path])
		if err == nil {
			if other, dup := fromFile[e.Name]; dup {
				err = &LoadError{Source: path, Err: fmt.Errorf("catalog %q is already defined in %s", e.Name, other)}
			}
		}
		if err != nil {
			loadErrs = append(loadErrs, err)
			failed = append(failed, path)
			m.metrics.RecordCatalogLoad(metricName(path, bySource[path]), 0, 0, err)
			m.logger.Error("schema load failed", "source", path, "error", err)
			continue
		}
		fromFile[e.Name] = path
		if prev := next[e.Name]; prev != nil && prev.Builtin {
			m.logger.Info("schema overrides built-in catalog", "template", e.Name, "source", path)
		}
		next[e.Name] = e
		m.metrics.RecordCatalogLoad(e.Name, e.Catalog.Len(), len(e.Catalog.Rules()), nil)
	}

	if len(loadErrs) > 0 && !keepPrevious {
		err := errors.Join(loadErrs...)
		m.lastLoadError = err
		return err
	}

	// Carry over catalogs whose sources failed this time.
	for _, src := range failed {
		for _, e := range previous {
			if e.Builtin || !underSource(e.Source, src) {
				continue
			}
			if _, taken := fromFile[e.Name]; taken {
				continue
			}
			m.logger.Warn("keeping previous catalog", "template", e.Name, "source", e.Source)
			next[e.Name] = e
		}
	}

	entries := make([]*Entry, 0, len(next))
	for _, e := range next {
		entries = append(entries, e)
	}
	if err := m.registry.Replace(entries); err != nil {
		m.lastLoadError = err
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = errors.Join(loadErrs...)

	m.logger.Info("catalogs loaded",
		"count", len(entries),
		"version", m.registry.Version(),
		"failed", len(failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return m.lastLoadError
}

// Watch watches the configured schema paths and reloads on change until ctx
// is cancelled. It returns immediately when no paths are configured.
func (m *Manager) Watch(ctx context.Context) error {
	paths := m.loader.Paths()
	if len(paths) == 0 {
		return nil
	}

	fw, err := NewFileWatcher(&FileWatcherConfig{
		Paths:            paths,
		DebounceInterval: m.cfg.Debounce,
		Extensions:       []string{".yaml", ".yml", ".json"},
		SkipHidden:       true,
	}, m.logger)
	if err != nil {
		return err
	}
	return fw.Watch(ctx, m.Reload)
}

// underSource reports whether path is src or lies below directory src.
func underSource(path, src string) bool {
	if path == src {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(src, string(filepath.Separator))+string(filepath.Separator))
}

func metricName(path string, prev *Entry) string {
	if prev != nil {
		return prev.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
