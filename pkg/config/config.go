package config

import "time"

// Config is the root configuration structure for regcheck.
// It is loaded from a YAML file and can be overridden by REGCHECK_*
// environment variables.
type Config struct {
	// Schemas controls where template catalogs come from and whether
	// schema files are watched for changes.
	Schemas SchemasConfig `yaml:"schemas"`

	// Validation holds engine defaults applied to every run.
	Validation ValidationConfig `yaml:"validation"`

	// Server contains configuration for the HTTP validation service.
	Server ServerConfig `yaml:"server"`

	// History controls persistence of validation run summaries.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SchemasConfig contains configuration for catalog sources.
type SchemasConfig struct {
	// Builtin registers the embedded EPT and TPT catalogs.
	// Default: true
	Builtin bool `yaml:"builtin"`

	// Paths lists schema files or directories to load in addition to the
	// built-in catalogs. Directories are scanned for *.yaml and *.yml files.
	// A file whose catalog name matches a built-in replaces it.
	Paths []string `yaml:"paths"`

	// Watch enables hot reloading of the files listed in Paths.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after a file change before the catalog
	// is recompiled. Editors often emit several events per save.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// ValidationConfig contains engine defaults.
type ValidationConfig struct {
	// Strict reports record keys that are not in the catalog as UnknownField.
	// Default: false
	Strict bool `yaml:"strict"`

	// Workers bounds the number of records validated concurrently in batch
	// mode. Zero means one worker per CPU.
	// Default: 0
	Workers int `yaml:"workers"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8420", "0.0.0.0:8420").
	// Default: "127.0.0.1:8420"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of a submitted document.
	// Default: 32MB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// HistoryConfig contains configuration for run history storage.
type HistoryConfig struct {
	// Enabled turns on recording of validation runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage implementation.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention controls pruning of old runs.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite storage configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// RetentionConfig contains configuration for history pruning.
type RetentionConfig struct {
	// MaxAge removes runs older than this. Zero keeps runs forever.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`

	// MaxRuns keeps at most this many of the newest runs. Zero is unlimited.
	// Default: 0
	MaxRuns int `yaml:"max_runs"`

	// Schedule is a cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "regcheck"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for validation duration (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
