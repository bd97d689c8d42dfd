package registry

import (
	"fmt"
	"strings"

	schemaerrors "findatex-hq/regcheck/pkg/schema/errors"
)

// RegistryError is returned for invalid registry operations.
type RegistryError struct {
	Operation string
	Message   string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s: %s", e.Operation, e.Message)
}

// NotFoundError is returned when no catalog is registered under a name.
type NotFoundError struct {
	Name       string
	Available  []string
	Suggestion string
}

func newNotFoundError(name string, available []string) *NotFoundError {
	suggestion := schemaerrors.SuggestKey(strings.ToLower(name), available)
	if !strings.HasPrefix(suggestion, "Did you mean") {
		suggestion = ""
	}
	return &NotFoundError{
		Name:       name,
		Available:  available,
		Suggestion: suggestion,
	}
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unknown template %q", e.Name)
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, " (%s)", e.Suggestion)
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&sb, "; available: %s", strings.Join(e.Available, ", "))
	}
	return sb.String()
}

// LoadError describes a schema source that failed to load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
