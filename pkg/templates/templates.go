package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/schema/parser"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// builtins maps the short template name to its embedded schema file.
var builtins = map[string]string{
	"ept": "schemas/ept.yaml",
	"tpt": "schemas/tpt.yaml",
}

// Names returns the names of the built-in templates, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a built-in template.
func Has(name string) bool {
	_, ok := builtins[Key(name)]
	return ok
}

// Source returns the raw schema definition of a built-in template.
func Source(name string) ([]byte, error) {
	path, ok := builtins[Key(name)]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (built-in: %s)", name, strings.Join(Names(), ", "))
	}
	return schemaFS.ReadFile(path)
}

// Load compiles a built-in template. Names are case-insensitive and accept
// the "findatex-" prefix, so "EPT", "ept" and "findatex-ept" are the same.
func Load(name string) (*catalog.Catalog, error) {
	data, err := Source(name)
	if err != nil {
		return nil, err
	}
	def, err := parser.NewParser().ParseBytes(data, "builtin:"+Key(name))
	if err != nil {
		return nil, err
	}
	return catalog.Compile(def)
}

// MustLoad is like Load but panics on error.
func MustLoad(name string) *catalog.Catalog {
	cat, err := Load(name)
	if err != nil {
		panic(err)
	}
	return cat
}

// LoadAll compiles every built-in template, keyed by short name.
func LoadAll() (map[string]*catalog.Catalog, error) {
	out := make(map[string]*catalog.Catalog, len(builtins))
	for _, name := range Names() {
		cat, err := Load(name)
		if err != nil {
			return nil, fmt.Errorf("built-in template %s: %w", name, err)
		}
		out[name] = cat
	}
	return out, nil
}

// Key returns the lookup key for a template name: lower case, trimmed, without
// the "findatex-" prefix.
func Key(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(n, "findatex-")
}
