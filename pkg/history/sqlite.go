package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/telemetry/logging"
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *logging.Logger
}

// NewSQLiteStore opens (creating if needed) the database and applies the
// schema. Path ":memory:" opens a private in-memory database.
func NewSQLiteStore(cfg config.SQLiteConfig, logger *logging.Logger) (*SQLiteStore, error) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite3"
	}
	if cfg.Driver != "sqlite3" && cfg.Driver != "sqlite" {
		return nil, newStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.Component("history.sqlite")

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, newStorageError("sqlite", "open", err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:"
	// databases from being per-connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store opened",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("sqlite", "enable_wal", err)
		}
	}
	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return newStorageError("sqlite", "set_busy_timeout", err)
		}
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Template, run.TemplateVersion, run.Source,
		run.Valid, run.Strict, run.Batch,
		run.Records, run.InvalidRecords, run.ErrorCount,
		run.StartedAt.UnixNano(), int64(run.Duration),
		string(run.Report),
	)
	if err != nil {
		return newStorageError("sqlite", "save", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+`, report FROM runs WHERE id = ?`, id)

	var report sql.NullString
	run, err := scanRun(row, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, newStorageError("sqlite", "get", err)
	}
	if report.Valid && report.String != "" {
		run.Report = []byte(report.String)
	}
	return run, nil
}

func (s *SQLiteStore) List(ctx context.Context, q *Query) ([]*Run, error) {
	where, args := buildWhereClause(q)
	query := `SELECT ` + runColumns + ` FROM runs` + where + ` ORDER BY started_at DESC, id DESC`
	if q != nil && (q.Limit > 0 || q.Offset > 0) {
		limit := q.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows, nil)
		if err != nil {
			return nil, newStorageError("sqlite", "scan", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("sqlite", "list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Count(ctx context.Context, q *Query) (int64, error) {
	where, args := buildWhereClause(q)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&n); err != nil {
		return 0, newStorageError("sqlite", "count", err)
	}
	return n, nil
}

func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteBeyond(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStorageError("sqlite", "ping", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError("sqlite", "close", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, report *sql.NullString) (*Run, error) {
	var (
		run             Run
		templateVersion sql.NullString
		source          sql.NullString
		startedAt       int64
		duration        int64
	)
	dest := []any{
		&run.ID, &run.Template, &templateVersion, &source,
		&run.Valid, &run.Strict, &run.Batch,
		&run.Records, &run.InvalidRecords, &run.ErrorCount,
		&startedAt, &duration,
	}
	if report != nil {
		dest = append(dest, report)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	run.TemplateVersion = templateVersion.String
	run.Source = source.String
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(duration)
	return &run, nil
}

func buildWhereClause(q *Query) (string, []any) {
	if q == nil {
		return "", nil
	}
	var conds []string
	var args []any
	if q.Template != "" {
		conds = append(conds, "template = ?")
		args = append(args, q.Template)
	}
	if q.Valid != nil {
		conds = append(conds, "valid = ?")
		args = append(args, *q.Valid)
	}
	if q.Since != nil {
		conds = append(conds, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if q.Until != nil {
		conds = append(conds, "started_at < ?")
		args = append(args, q.Until.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
