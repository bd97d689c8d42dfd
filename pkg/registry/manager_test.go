package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"findatex-hq/regcheck/pkg/config"
)

const customSchema = `schema_version: "1.0"
name: %s
template: EPT
template_version: V21
fields:
  - id: 00001_EPT_Version
    type: enum
    required: true
    values: ["V21"]
  - id: 00002_Extra
    type: string
`

const brokenSchema = `schema_version: "1.0"
name: custom
fields:
  - id: A
    type: colour
`

func writeSchema(t *testing.T, dir, file, name string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	content := []byte(fmt.Sprintf(customSchema, name))
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func TestManager_LoadBuiltins(t *testing.T) {
	m := NewManager(config.SchemasConfig{Builtin: true})
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	names := m.Registry().Names()
	if len(names) != 2 || names[0] != "ept" || names[1] != "tpt" {
		t.Fatalf("Names() = %v, want [ept tpt]", names)
	}
	e, _ := m.Registry().Entry("ept")
	if !e.Builtin || e.Source != "builtin:ept" {
		t.Errorf("ept entry = %+v", e)
	}
}

func TestManager_FileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "ept.yaml", "findatex-ept")
	writeSchema(t, dir, "custom.yml", "custom")

	m := NewManager(config.SchemasConfig{Builtin: true, Paths: []string{dir}})
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := m.Registry().Len(); got != 3 {
		t.Errorf("Len() = %d, want 3 (ept override, tpt, custom)", got)
	}
	cat, err := m.Registry().Get("ept")
	if err != nil {
		t.Fatalf("Get(ept) error = %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("ept catalog has %d fields, want the 2-field override", cat.Len())
	}
}

func TestManager_LoadFailsOnBrokenSchema(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(brokenSchema), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(config.SchemasConfig{Builtin: true, Paths: []string{dir}})
	err := m.Load()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want LoadError", err)
	}
	if m.Registry().Len() != 0 {
		t.Errorf("failed initial load registered %d catalogs", m.Registry().Len())
	}
}

func TestManager_LoadDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.yaml", "custom")
	writeSchema(t, dir, "b.yaml", "custom")

	m := NewManager(config.SchemasConfig{Paths: []string{dir}})
	if err := m.Load(); err == nil {
		t.Fatal("expected duplicate catalog error")
	}
}

func TestManager_ReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "custom.yaml", "custom")
	other := writeSchema(t, dir, "other.yaml", "other")

	m := NewManager(config.SchemasConfig{Paths: []string{dir}})
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before, _ := m.Registry().Entry("custom")

	if err := os.WriteFile(path, []byte(brokenSchema), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(other); err != nil {
		t.Fatal(err)
	}

	if err := m.Reload(); err == nil {
		t.Fatal("Reload() should report the broken file")
	}

	after, err := m.Registry().Entry("custom")
	if err != nil {
		t.Fatalf("custom catalog dropped after failed reload: %v", err)
	}
	if after != before {
		t.Error("failed reload replaced the previous catalog")
	}
	if _, err := m.Registry().Get("other"); err == nil {
		t.Error("catalog of deleted file should be removed")
	}
	if _, lastErr := m.LastLoad(); lastErr == nil {
		t.Error("LastLoad() should report the reload error")
	}
}

func TestManager_ReloadSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "custom.yaml", "custom")

	m := NewManager(config.SchemasConfig{Paths: []string{dir}})
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before, _ := m.Registry().Entry("custom")
	version := m.Registry().Version()

	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	after, _ := m.Registry().Entry("custom")
	if after != before {
		t.Error("unchanged file was recompiled")
	}
	if m.Registry().Version() != version {
		t.Error("version changed without a content change")
	}
}

func TestManager_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "custom.yaml", "custom")

	m := NewManager(config.SchemasConfig{Paths: []string{path}, Watch: true, Debounce: 20 * time.Millisecond})
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	version := m.Registry().Version()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeSchema(t, dir, "custom.yaml", "renamed")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m.Registry().Version() != version {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if _, err := m.Registry().Get("renamed"); err != nil {
		t.Fatalf("watcher did not reload changed schema: %v", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	calls := make(chan int, 10)

	for i := range 5 {
		d.Trigger(func() { calls <- i })
	}

	select {
	case got := <-calls:
		if got != 4 {
			t.Errorf("callback %d ran, want the last one (4)", got)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced callback never ran")
	}

	select {
	case got := <-calls:
		t.Errorf("unexpected extra callback %d", got)
	case <-time.After(60 * time.Millisecond):
	}

	d.Stop()
	d.Trigger(func() { calls <- 99 })
	select {
	case <-calls:
		t.Error("callback ran after Stop")
	case <-time.After(60 * time.Millisecond):
	}
}
