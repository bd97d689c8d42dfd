package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/registry"
	"findatex-hq/regcheck/pkg/telemetry/health"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/telemetry/metrics"
)

// Server is the validation HTTP service.
type Server struct {
	config     *config.Config
	registry   *registry.Registry
	history    history.Store
	recorder   *history.Recorder
	metrics    *metrics.Collector
	checker    *health.Checker
	logger     *logging.Logger
	version    VersionInfo
	httpServer *http.Server

	mu        sync.RWMutex
	isRunning bool
	addr      net.Addr
}

// VersionInfo is reported by GET /version.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics enables request and validation metrics and mounts the
// Prometheus endpoint at the configured path.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithHistory records every validation in store and mounts /v1/runs.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithVersion sets the build information reported by /version.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server that validates against the catalogs in reg.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		config:   cfg,
		registry: reg,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Component("server")
	if s.history != nil {
		s.recorder = history.NewRecorder(s.history, s.logger, s.metrics)
	}

	s.checker = health.New(5 * time.Second)
	s.checker.RegisterCheck("catalogs", func(context.Context) error {
		if s.registry.Len() == 0 {
			return errors.New("no catalogs loaded")
		}
		return nil
	})
	if s.history != nil {
		s.checker.RegisterCheck("history", s.history.Ping)
	}
	return s
}

// Checker returns the server's readiness checker so callers can add
// checks before Start.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	cfg := s.config.Server
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting validation server",
			"address", ln.Addr().String(),
			"templates", s.registry.Names(),
			"history", s.history != nil,
			"metrics", s.metricsEnabled(),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		if ok {
			return err
		}
		return nil
	}
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	timeout := s.config.Server.ShutdownTimeout
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

	shutdownCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("validation server stopped")
	return nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/validate/{template}", s.handleValidate)
	mux.HandleFunc("GET /v1/templates", s.handleTemplates)
	mux.HandleFunc("GET /v1/templates/{template}", s.handleTemplate)
	if s.history != nil {
		mux.HandleFunc("GET /v1/runs", s.handleRuns)
		mux.HandleFunc("GET /v1/runs/{id}", s.handleRun)
	}

	health.Register(mux, s.checker, s.version.Version, s.version.Commit, s.version.BuildTime)
	if s.metricsEnabled() {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	// instrument must wrap the mux directly so it can read the matched
	// route pattern after dispatch.
	var handler http.Handler = s.instrument(mux)
	handler = s.recovery(handler)
	return handler
}

func (s *Server) metricsEnabled() bool {
	return s.metrics != nil && s.config.Telemetry.Metrics.Enabled
}
