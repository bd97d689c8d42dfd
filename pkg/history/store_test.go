package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/report"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRun(t *testing.T, template string, valid bool, started time.Time) *Run {
	t.Helper()
	rep := &report.Report{
		Valid:           valid,
		Catalog:         template,
		TemplateVersion: "V21",
		Source:          "fund.csv",
		Records:         3,
		Errors:          []report.Entry{},
	}
	if !valid {
		rep.InvalidRecords = 1
		rep.ErrorCount = 2
	}
	run, err := NewRun(template, rep, false, started, 40*time.Millisecond)
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	return run
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemoryStore()}

	for _, driver := range []string{"sqlite", "sqlite3"} {
		s, err := NewSQLiteStore(config.SQLiteConfig{
			Path:        filepath.Join(t.TempDir(), "history.db"),
			Driver:      driver,
			BusyTimeout: time.Second,
			WALMode:     true,
		}, nil)
		if err != nil {
			if driver == "sqlite3" {
				// mattn/go-sqlite3 needs cgo.
				t.Logf("skipping driver %s: %v", driver, err)
				continue
			}
			t.Fatalf("NewSQLiteStore(%s) error = %v", driver, err)
		}
		t.Cleanup(func() { s.Close() })
		out["sqlite/"+driver] = s
	}
	return out
}

func TestStore_SaveGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			run := newRun(t, "ept", false, base)
			if err := s.Save(ctx, run); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := s.Get(ctx, run.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Template != "ept" || got.Valid || got.ErrorCount != 2 || got.InvalidRecords != 1 {
				t.Errorf("Get() = %+v", got)
			}
			if !got.StartedAt.Equal(base) {
				t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
			}
			if got.Duration != 40*time.Millisecond {
				t.Errorf("Duration = %v", got.Duration)
			}

			rep, err := got.DecodeReport()
			if err != nil {
				t.Fatalf("DecodeReport() error = %v", err)
			}
			if rep.Source != "fund.csv" || rep.TemplateVersion != "V21" {
				t.Errorf("decoded report = %+v", rep)
			}
		})
	}
}

func TestStore_SaveDuplicate(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			run := newRun(t, "ept", true, base)
			if err := s.Save(ctx, run); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			err := s.Save(ctx, run)
			var se *StorageError
			if !errors.As(err, &se) {
				t.Fatalf("second Save() error = %v, want StorageError", err)
			}
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_ListAndCount(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := range 5 {
				template := "ept"
				if i%2 == 1 {
					template = "tpt"
				}
				if err := s.Save(ctx, newRun(t, template, i != 3, base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			all, err := s.List(ctx, nil)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(all) != 5 {
				t.Fatalf("len(List) = %d, want 5", len(all))
			}
			for i := 1; i < len(all); i++ {
				if all[i].StartedAt.After(all[i-1].StartedAt) {
					t.Errorf("List() not newest first at %d", i)
				}
			}
			if len(all[0].Report) != 0 {
				t.Error("List() should omit reports")
			}

			invalid := false
			since := base.Add(time.Hour)
			until := base.Add(4 * time.Hour)
			tests := []struct {
				name string
				q    *Query
				want int
			}{
				{"template", &Query{Template: "tpt"}, 2},
				{"invalid", &Query{Valid: &invalid}, 1},
				{"window", &Query{Since: &since, Until: &until}, 3},
				{"limit", &Query{Limit: 2}, 2},
				{"offset", &Query{Offset: 4}, 1},
			}
			for _, tt := range tests {
				got, err := s.List(ctx, tt.q)
				if err != nil {
					t.Fatalf("%s: List() error = %v", tt.name, err)
				}
				if len(got) != tt.want {
					t.Errorf("%s: len(List) = %d, want %d", tt.name, len(got), tt.want)
				}
			}

			n, err := s.Count(ctx, &Query{Template: "ept"})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != 3 {
				t.Errorf("Count(ept) = %d, want 3", n)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var ids []string
			for i := range 6 {
				run := newRun(t, "ept", true, base.Add(time.Duration(i)*time.Hour))
				ids = append(ids, run.ID)
				if err := s.Save(ctx, run); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			n, err := s.DeleteBefore(ctx, base.Add(2*time.Hour))
			if err != nil || n != 2 {
				t.Fatalf("DeleteBefore() = %d, %v; want 2", n, err)
			}

			n, err = s.DeleteBeyond(ctx, 3)
			if err != nil || n != 1 {
				t.Fatalf("DeleteBeyond() = %d, %v; want 1", n, err)
			}

			left, _ := s.List(ctx, nil)
			if len(left) != 3 {
				t.Fatalf("len(List) = %d, want 3", len(left))
			}
			if left[0].ID != ids[5] || left[2].ID != ids[3] {
				t.Errorf("wrong runs kept: %s..%s", left[0].ID, left[2].ID)
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	cfg := config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "h.db"), Driver: "sqlite"}
	s, err := NewSQLiteStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	run := newRun(t, "tpt", true, base)
	if err := s.Save(context.Background(), run); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(cfg, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Get(context.Background(), run.ID); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"memory", false},
		{"sqlite", false},
		{"postgres", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.HistoryConfig{
				Backend: tt.backend,
				SQLite:  config.SQLiteConfig{Path: ":memory:", Driver: "sqlite"},
			}
			s, err := Open(cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				if err := s.Ping(context.Background()); err != nil {
					t.Errorf("Ping() error = %v", err)
				}
				s.Close()
			}
		})
	}
}

func TestNewSQLiteStore_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStore(config.SQLiteConfig{Path: ":memory:", Driver: "postgres"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if want := fmt.Sprintf("%q", "postgres"); !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name the driver", err)
	}
}
