package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/schema/parser"
	"findatex-hq/regcheck/pkg/templates"
)

// Loader turns schema sources into registry entries.
type Loader struct {
	builtin bool
	paths   []string
	now     func() time.Time
}

// NewLoader creates a loader for the built-in catalogs (if builtin is
// true) and the given files or directories.
func NewLoader(builtin bool, paths []string) *Loader {
	return &Loader{
		builtin: builtin,
		paths:   append([]string(nil), paths...),
		now:     time.Now,
	}
}

// Paths returns the configured schema paths.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Builtins compiles the embedded catalogs. It returns nil when built-ins are
// disabled.
func (l *Loader) Builtins() ([]*Entry, error) {
	if !l.builtin {
		return nil, nil
	}
	var entries []*Entry
	for _, name := range templates.Names() {
		data, err := templates.Source(name)
		if err != nil {
			return nil, err
		}
		cat, err := templates.Load(name)
		if err != nil {
			return nil, &LoadError{Source: "builtin:" + name, Err: err}
		}
		entries = append(entries, &Entry{
			Name:     name,
			Catalog:  cat,
			Source:   "builtin:" + name,
			Builtin:  true,
			Digest:   digest(data),
			LoadedAt: l.now(),
		})
	}
	return entries, nil
}

// Files expands the configured paths into schema files. Directories are
// walked recursively for schema files, skipping hidden entries.
// A path that cannot be read is reported as a LoadError in errs and does
// not stop the others.
func (l *Loader) Files() (files []string, errs []*LoadError) {
	seen := make(map[string]bool)
	for _, root := range l.paths {
		info, err := os.Stat(root)
		if err != nil {
			errs = append(errs, &LoadError{Source: root, Err: err})
			continue
		}
		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true
				files = append(files, root)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && parser.IsSchemaFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, &LoadError{Source: root, Err: err})
			continue
		}
		sort.Strings(found)
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, errs
}

// LoadFile compiles one schema file. If prev describes the same file with
// the same content it is returned unchanged.
func (l *Loader) LoadFile(path string, prev *Entry) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	sum := digest(data)
	if prev != nil && prev.Source == path && prev.Digest == sum {
		return prev, nil
	}

	cat, err := catalog.LoadBytes(data, path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	name := templates.Key(cat.Name())
	if name == "" {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("catalog has no name")}
	}

	return &Entry{
		Name:     name,
		Catalog:  cat,
		Source:   path,
		Digest:   sum,
		LoadedAt: l.now(),
	}, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && base[0] == '.'
}
