package ast

// Definition is the root node of a parsed schema definition.
// It is the uncompiled form of a field catalog: nothing about it has been
// checked beyond YAML well-formedness.
type Definition struct {
	SchemaVersion   string // Definition format version (e.g., "1.0")
	Name            string // Catalog name (e.g., "findatex-ept")
	Template        string // Template family (e.g., "EPT", "TPT")
	TemplateVersion string // Template version (e.g., "V21")
	Description     string

	Fields          []*FieldSpec // Field specs in declaration order
	ExclusiveGroups []*GroupSpec // Mutually exclusive field groups

	SourceFile string
	Location   Location
}

// FieldCount returns the number of declared fields.
func (d *Definition) FieldCount() int {
	return len(d.Fields)
}

// FieldIDs returns the identifiers of all declared fields in declaration order.
func (d *Definition) FieldIDs() []string {
	ids := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		ids = append(ids, f.ID)
	}
	return ids
}

// FieldSpec describes one reportable data point as written in the schema file.
type FieldSpec struct {
	ID          string
	Type        string
	Required    bool
	Description string

	// Enumerations. Values holds the raw YAML scalars; the compiler checks
	// them against the declared type.
	Values []*ValueNode

	// Numeric bounds (inclusive). Nil means unbounded.
	Min *float64
	Max *float64

	// String constraints.
	Pattern   string
	MinLength *int
	MaxLength *int

	Rules []*RuleSpec

	Location Location
}

// HasRules returns true if the field declares conditional rules.
func (f *FieldSpec) HasRules() bool {
	return len(f.Rules) > 0
}

// GroupSpec declares a set of fields of which at most one may be present.
type GroupSpec struct {
	Name     string
	Fields   []string
	Location Location
}
