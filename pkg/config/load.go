package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "REGCHECK_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default, so omitted keys keep their default
// values. An empty path yields the defaults. The configuration is validated
// but not modified by environment variables; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Relative schema paths are resolved against the config file.
	base := filepath.Dir(path)
	for i, p := range cfg.Schemas.Paths {
		if p != "" && !filepath.IsAbs(p) {
			cfg.Schemas.Paths[i] = filepath.Join(base, p)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention REGCHECK_SECTION_FIELD (e.g., REGCHECK_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file (if path is not empty)
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg, os.Getenv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Malformed values are collected and reported together
// rather than silently ignored.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	o := envOverrider{getenv: getenv}

	// Schemas
	if val := getenv(EnvPrefix + "SCHEMAS_PATHS"); val != "" {
		cfg.Schemas.Paths = splitList(val)
	}
	o.boolean("SCHEMAS_BUILTIN", &cfg.Schemas.Builtin)
	o.boolean("SCHEMAS_WATCH", &cfg.Schemas.Watch)
	o.duration("SCHEMAS_DEBOUNCE", &cfg.Schemas.Debounce)

	// Validation
	o.boolean("VALIDATION_STRICT", &cfg.Validation.Strict)
	o.integer("VALIDATION_WORKERS", &cfg.Validation.Workers)

	// Server
	o.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	o.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	o.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	o.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	o.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := getenv(EnvPrefix + "SERVER_MAX_BODY_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = n
		} else {
			o.fail("SERVER_MAX_BODY_BYTES", val, err)
		}
	}

	// History
	o.boolean("HISTORY_ENABLED", &cfg.History.Enabled)
	o.str("HISTORY_BACKEND", &cfg.History.Backend)
	o.str("HISTORY_SQLITE_PATH", &cfg.History.SQLite.Path)
	o.str("HISTORY_SQLITE_DRIVER", &cfg.History.SQLite.Driver)
	o.duration("HISTORY_RETENTION_MAX_AGE", &cfg.History.Retention.MaxAge)
	o.integer("HISTORY_RETENTION_MAX_RUNS", &cfg.History.Retention.MaxRuns)
	o.str("HISTORY_RETENTION_SCHEDULE", &cfg.History.Retention.Schedule)

	// Telemetry
	o.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	o.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	o.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)

	if len(o.errs) > 0 {
		return ValidationError{Errors: o.errs}
	}
	return nil
}

// envOverrider reads REGCHECK_* variables into typed fields.
type envOverrider struct {
	getenv func(string) string
	errs   []FieldError
}

func (o *envOverrider) str(name string, dst *string) {
	if val := o.getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func (o *envOverrider) boolean(name string, dst *bool) {
	val := o.getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		o.fail(name, val, err)
		return
	}
	*dst = b
}

func (o *envOverrider) integer(name string, dst *int) {
	val := o.getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		o.fail(name, val, err)
		return
	}
	*dst = i
}

func (o *envOverrider) duration(name string, dst *time.Duration) {
	val := o.getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		o.fail(name, val, err)
		return
	}
	*dst = d
}

func (o *envOverrider) fail(name, val string, err error) {
	o.errs = append(o.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid value %q: %v", val, err),
	})
}

// splitList splits a comma or path-list separated value.
func splitList(val string) []string {
	fields := strings.FieldsFunc(val, func(r rune) bool {
		return r == ',' || r == filepath.ListSeparator
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
