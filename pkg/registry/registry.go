package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"sync"
	"time"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/templates"
)

// Entry is a registered catalog together with where it came from.
type Entry struct {
	// Name is the lookup key (see templates.Key).
	Name string

	Catalog *catalog.Catalog

	// Source is the schema file path, or "builtin:<name>" for embedded
	// catalogs.
	Source string

	// Builtin is true for the embedded EPT and TPT catalogs.
	Builtin bool

	// Digest is the SHA-256 of the schema source, used to skip reloads
	// when an editor rewrites a file without changing it.
	Digest string

	LoadedAt time.Time
}

// Registry is a thread-safe set of named catalogs. Lookups see either the
// whole previous set or the whole new one; Replace swaps atomically.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	version string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds or replaces a single entry.
func (r *Registry) Register(e *Entry) error {
	if e == nil || e.Catalog == nil {
		return &RegistryError{Operation: "register", Message: "catalog cannot be nil"}
	}
	name := templates.Key(e.Name)
	if name == "" {
		return &RegistryError{Operation: "register", Message: "catalog name cannot be empty"}
	}
	e.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = e
	r.updateVersion()
	return nil
}

// Replace swaps the full set of entries.
func (r *Registry) Replace(entries []*Entry) error {
	next := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		if e == nil || e.Catalog == nil {
			return &RegistryError{Operation: "replace", Message: "catalog cannot be nil"}
		}
		e.Name = templates.Key(e.Name)
		if e.Name == "" {
			return &RegistryError{Operation: "replace", Message: "catalog name cannot be empty"}
		}
		next[e.Name] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = next
	r.updateVersion()
	return nil
}

// Get returns the catalog registered under name. Names are matched the way
// templates.Key normalizes them.
func (r *Registry) Get(name string) (*catalog.Catalog, error) {
	e, err := r.Entry(name)
	if err != nil {
		return nil, err
	}
	return e.Catalog, nil
}

// Entry returns the entry registered under name.
func (r *Registry) Entry(name string) (*Entry, error) {
	key := templates.Key(name)

	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return nil, newNotFoundError(name, r.Names())
	}
	return e, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Entries returns the registered entries sorted by name.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		out = append(out, r.entries[name])
	}
	return out
}

// Len returns the number of registered catalogs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Version identifies the current set of catalogs. It changes whenever a
// catalog is added, removed or its source changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// updateVersion must be called with mu held.
func (r *Registry) updateVersion() {
	h := sha256.New()
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		e := r.entries[name]
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(e.Digest))
		h.Write([]byte{0})
	}
	r.version = hex.EncodeToString(h.Sum(nil))[:12]
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
