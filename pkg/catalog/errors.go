package catalog

import (
	"fmt"

	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
)

// SchemaError is returned when a definition cannot be compiled. It carries
// every problem found, not only the first.
type SchemaError struct {
	Source string
	Errors *schemaErrors.ErrorList
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s is invalid: %s", e.Source, e.Errors.Error())
}

// Unwrap returns the underlying error list.
func (e *SchemaError) Unwrap() error {
	return e.Errors
}

// Count returns the number of problems found.
func (e *SchemaError) Count() int {
	return e.Errors.Count()
}
