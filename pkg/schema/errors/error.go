package errors

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"findatex-hq/regcheck/pkg/schema/ast"
)

// ErrorType categorizes a schema definition problem.
type ErrorType string

const (
	// ErrorTypeSyntax is malformed YAML or JSON, or a scalar that cannot be
	// decoded into the expected type.
	ErrorTypeSyntax ErrorType = "syntax"
	// ErrorTypeStructural is a well-formed document describing an impossible
	// field or rule: missing id, unknown kind, inverted bounds, empty enum.
	ErrorTypeStructural ErrorType = "structural"
	// ErrorTypeReference is a rule, trigger or exclusive group naming a field
	// the catalog does not declare.
	ErrorTypeReference ErrorType = "reference"
	ErrorTypeIO        ErrorType = "io"
)

// Error is one located problem in a schema definition.
type Error struct {
	Type     ErrorType
	Message  string
	Location ast.Location

	// Context holds the surrounding source lines, filled by AddContextToError.
	Context    string
	Suggestion string
}

// Error renders the problem as a compiler-style diagnostic:
//
//	schemas/ept.yaml:12:5: structural: Field '01130_Maturity_Date' has unknown type 'dat'
//	   11 |   - id: 01130_Maturity_Date
//	-> 12 |     type: dat
//	      = suggestion: Did you mean 'date'?
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Location.IsValid() {
		sb.WriteString(e.Location.String())
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%s: %s\n", e.Type, e.Message)
	sb.WriteString(e.Context)
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "      = suggestion: %s\n", e.Suggestion)
	}
	return sb.String()
}

// ErrorList collects every problem in a definition so it can be reported
// in one pass.
type ErrorList struct {
	Errors []*Error
}

func NewErrorList() *ErrorList {
	return &ErrorList{Errors: []*Error{}}
}

func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{Type: errType, Message: message, Location: location})
}

func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Location: location, Suggestion: suggestion})
}

// Merge appends the problems of other. A nil other is ignored.
func (el *ErrorList) Merge(other *ErrorList) {
	if other != nil {
		el.Errors = append(el.Errors, other.Errors...)
	}
}

func (el *ErrorList) HasErrors() bool { return len(el.Errors) > 0 }

func (el *ErrorList) Count() int { return len(el.Errors) }

// Sorted returns the problems ordered by file, line and column. Problems
// without a location keep their relative order at the end.
func (el *ErrorList) Sorted() []*Error {
	out := slices.Clone(el.Errors)
	slices.SortStableFunc(out, func(a, b *Error) int {
		av, bv := a.Location.IsValid(), b.Location.IsValid()
		switch {
		case av && !bv:
			return -1
		case !av && bv:
			return 1
		case !av && !bv:
			return 0
		}
		return cmp.Or(
			strings.Compare(a.Location.File, b.Location.File),
			cmp.Compare(a.Location.Line, b.Location.Line),
			cmp.Compare(a.Location.Column, b.Location.Column),
		)
	})
	return out
}

// Error lists every problem in source order.
func (el *ErrorList) Error() string {
	switch len(el.Errors) {
	case 0:
		return ""
	case 1:
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d problems:\n", len(el.Errors))
	for _, err := range el.Sorted() {
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil for an empty list so callers can write
// `return list.ToError()`.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns the problems of one category.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	return slices.ContainsFunc(el.Errors, func(e *Error) bool { return e.Type == errType })
}
