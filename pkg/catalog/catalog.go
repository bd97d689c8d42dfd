package catalog

import (
	"regexp"

	"findatex-hq/regcheck/pkg/schema/ast"
)

// Catalog is a compiled, immutable field catalog. It is safe for
// concurrent use by any number of validations.
type Catalog struct {
	name            string
	template        string
	templateVersion string
	description     string
	sourceFile      string

	fields []*FieldDefinition
	index  map[string]*FieldDefinition
	rules  []*Rule
	groups []*Group
}

// FieldDefinition is the compiled form of one field. Treat as read-only.
type FieldDefinition struct {
	ID          string
	Kind        Kind
	Required    bool
	Description string

	// Enum holds the allowed values in declaration order: strings for
	// KindEnum, integral float64 values for KindIntegerEnum.
	Enum []any

	Min *float64
	Max *float64

	Pattern   *regexp.Regexp
	MinLength *int
	MaxLength *int

	Rules []*Rule

	stringSet map[string]struct{}
	numberSet map[float64]struct{}
}

// AllowsString reports whether s is a member of a string enumeration.
func (d *FieldDefinition) AllowsString(s string) bool {
	_, ok := d.stringSet[s]
	return ok
}

// AllowsNumber reports whether n is a member of an integer enumeration.
func (d *FieldDefinition) AllowsNumber(n float64) bool {
	_, ok := d.numberSet[n]
	return ok
}

// Rule is a compiled conditional rule. Field is the consequence field (the
// field that declared the rule); Trigger names the field it depends on.
type Rule struct {
	Name        string
	Field       string
	Trigger     Trigger
	Requirement ast.Requirement
	Value       any // Expected value for ast.RequirementEquals
}

// Trigger is the condition under which a rule fires.
type Trigger struct {
	Field    string
	Operator ast.Operator
	Value    any // string, float64, bool, []any or nil
}

// Group is a set of mutually exclusive fields: at most one may be present.
type Group struct {
	Name   string
	Fields []string
}

// Name returns the catalog name (e.g. "findatex-ept").
func (c *Catalog) Name() string { return c.name }

// Template returns the template family (e.g. "EPT").
func (c *Catalog) Template() string { return c.template }

// TemplateVersion returns the template version (e.g. "V21").
func (c *Catalog) TemplateVersion() string { return c.templateVersion }

// Description returns the free-text catalog description.
func (c *Catalog) Description() string { return c.description }

// SourceFile returns the schema file the catalog was compiled from.
func (c *Catalog) SourceFile() string { return c.sourceFile }

// Len returns the number of field definitions.
func (c *Catalog) Len() int { return len(c.fields) }

// Fields returns the field definitions in declaration order.
func (c *Catalog) Fields() []*FieldDefinition {
	out := make([]*FieldDefinition, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field looks up a field definition by identifier.
func (c *Catalog) Field(id string) (*FieldDefinition, bool) {
	d, ok := c.index[id]
	return d, ok
}

// Has reports whether id is declared.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns the field identifiers in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.fields))
	for i, d := range c.fields {
		ids[i] = d.ID
	}
	return ids
}

// Required returns the definitions marked required, in declaration order.
func (c *Catalog) Required() []*FieldDefinition {
	var out []*FieldDefinition
	for _, d := range c.fields {
		if d.Required {
			out = append(out, d)
		}
	}
	return out
}

// Rules returns every conditional rule in evaluation order: field
// declaration order, then rule order within the field.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Groups returns the exclusive groups in declaration order.
func (c *Catalog) Groups() []*Group {
	out := make([]*Group, len(c.groups))
	copy(out, c.groups)
	return out
}
