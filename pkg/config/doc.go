// Package config provides configuration management for regcheck.
//
// Configuration is read from a YAML file and can be overridden with
// environment variables. Every field has a default, so running without a
// file is valid.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("regcheck.yaml")            // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("regcheck.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention REGCHECK_SECTION_FIELD:
//
//   - REGCHECK_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - REGCHECK_VALIDATION_STRICT overrides validation.strict
//   - REGCHECK_SCHEMAS_PATHS overrides schemas.paths (comma separated)
//   - REGCHECK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A malformed value (for example REGCHECK_SERVER_READ_TIMEOUT=soon) is a
// load error.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation
//
// # Singleton
//
//	if err := config.Initialize(path); err != nil {
//	    return err
//	}
//	cfg := config.GetConfig()
//
// Packages below cmd/ take a *Config or a section of it explicitly.
//
// # Example Configuration
//
//	schemas:
//	  paths: [./schemas]
//	  watch: true
//	validation:
//	  strict: false
//	  workers: 8
//	server:
//	  listen_address: "0.0.0.0:8420"
//	history:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/history.db
//	    driver: sqlite
//	  retention:
//	    max_age: 720h
//	    schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
