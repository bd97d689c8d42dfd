package history

import (
	"fmt"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/telemetry/logging"
)

// Open creates the store selected by cfg.Backend.
func Open(cfg config.HistoryConfig, logger *logging.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		return NewSQLiteStore(cfg.SQLite, logger)
	default:
		return nil, newStorageError(cfg.Backend, "open", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
