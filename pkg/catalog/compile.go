package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"findatex-hq/regcheck/pkg/schema/ast"
	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
	"findatex-hq/regcheck/pkg/schema/parser"
)

// supportedSchemaVersions lists the definition format versions this
// compiler understands. An empty version is read as the latest.
var supportedSchemaVersions = map[string]bool{
	"":    true,
	"1.0": true,
}

// Compile turns a parsed definition into an executable catalog. All
// structural and reference problems are collected and returned together
// as a *SchemaError.
func Compile(def *ast.Definition) (*Catalog, error) {
	if def == nil {
		return nil, fmt.Errorf("catalog: nil definition")
	}

	c := &compiler{
		def:    def,
		errors: schemaErrors.NewErrorList(),
		cat: &Catalog{
			name:            def.Name,
			template:        def.Template,
			templateVersion: def.TemplateVersion,
			description:     def.Description,
			sourceFile:      def.SourceFile,
			index:           make(map[string]*FieldDefinition, len(def.Fields)),
		},
	}

	// Identifiers first, so that references can be resolved regardless of
	// declaration order.
	c.compileMetadata()
	for _, spec := range c.def.Fields {
		c.compileField(spec)
	}
	for _, spec := range c.def.Fields {
		c.compileRules(spec)
	}
	for i, spec := range c.def.ExclusiveGroups {
		c.compileGroup(spec, i)
	}

	if c.errors.HasErrors() {
		source := def.SourceFile
		if source == "" {
			source = def.Name
		}
		return nil, &SchemaError{Source: source, Errors: c.errors}
	}
	return c.cat, nil
}

// MustCompile is like Compile but panics on error. Intended for catalogs
// embedded in the binary.
func MustCompile(def *ast.Definition) *Catalog {
	cat, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return cat
}

// Load parses and compiles the schema file at path.
func Load(path string) (*Catalog, error) {
	def, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}
	return Compile(def)
}

// LoadBytes parses and compiles a schema definition held in memory.
func LoadBytes(data []byte, source string) (*Catalog, error) {
	def, err := parser.NewParser().ParseBytes(data, source)
	if err != nil {
		return nil, err
	}
	return Compile(def)
}

type compiler struct {
	def    *ast.Definition
	cat    *Catalog
	errors *schemaErrors.ErrorList
	// specs maps identifiers to their first declaration.
	specs map[string]*ast.FieldSpec
}

func (c *compiler) compileMetadata() {
	c.specs = make(map[string]*ast.FieldSpec, len(c.def.Fields))

	if !supportedSchemaVersions[c.def.SchemaVersion] {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Unsupported schema_version %q", c.def.SchemaVersion),
			c.def.Location,
			"Supported versions: 1.0")
	}
	if c.def.Name == "" {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			"Missing required key 'name'",
			c.def.Location,
			schemaErrors.SuggestMissingField("name", "findatex-ept"))
	}
}

func (c *compiler) compileField(spec *ast.FieldSpec) {
	if spec.ID == "" {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			"Field is missing its identifier",
			spec.Location,
			schemaErrors.SuggestMissingField("id", "00001_EPT_Version"))
		return
	}
	if first, dup := c.specs[spec.ID]; dup {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Duplicate field id '%s' (first declared at %s)", spec.ID, first.Location),
			spec.Location)
		return
	}
	c.specs[spec.ID] = spec

	def := &FieldDefinition{
		ID:          spec.ID,
		Required:    spec.Required,
		Description: spec.Description,
		Min:         spec.Min,
		Max:         spec.Max,
		MinLength:   spec.MinLength,
		MaxLength:   spec.MaxLength,
	}

	kind, ok := ParseKind(spec.Type)
	switch {
	case spec.Type == "":
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has no type", spec.ID),
			spec.Location,
			schemaErrors.SuggestKind("", kindNames()))
	case !ok:
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has unknown type '%s'", spec.ID, spec.Type),
			spec.Location,
			schemaErrors.SuggestKind(spec.Type, kindNames()))
	}
	def.Kind = kind

	if ok {
		c.compileEnum(spec, def)
		c.compileBounds(spec, def)
		c.compileStringConstraints(spec, def)
	}

	c.cat.fields = append(c.cat.fields, def)
	c.cat.index[def.ID] = def
}

func (c *compiler) compileEnum(spec *ast.FieldSpec, def *FieldDefinition) {
	if !def.Kind.IsEnum() {
		if spec.Values != nil {
			c.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Field '%s' of type %s cannot declare values", spec.ID, def.Kind),
				spec.Location)
		}
		return
	}

	if len(spec.Values) == 0 {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' declares an empty enumeration", spec.ID),
			spec.Location,
			schemaErrors.SuggestMissingField("values", `["Y", "N"]`))
		return
	}

	def.Enum = make([]any, 0, len(spec.Values))
	if def.Kind == KindEnum {
		def.stringSet = make(map[string]struct{}, len(spec.Values))
	} else {
		def.numberSet = make(map[float64]struct{}, len(spec.Values))
	}

	for _, v := range spec.Values {
		switch def.Kind {
		case KindEnum:
			s, ok := v.Value.(string)
			if v.Type != ast.ValueTypeString || !ok {
				c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Enumeration value %s of field '%s' is not a string", v, spec.ID),
					v.Location,
					"Quote the value")
				continue
			}
			if _, dup := def.stringSet[s]; dup {
				c.errors.AddError(schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate enumeration value %q in field '%s'", s, spec.ID),
					v.Location)
				continue
			}
			def.stringSet[s] = struct{}{}
			def.Enum = append(def.Enum, s)
		case KindIntegerEnum:
			n, ok := v.Value.(float64)
			if v.Type != ast.ValueTypeNumber || !ok || n != math.Trunc(n) {
				c.errors.AddError(schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Enumeration value %s of field '%s' is not an integer", v, spec.ID),
					v.Location)
				continue
			}
			if _, dup := def.numberSet[n]; dup {
				c.errors.AddError(schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate enumeration value %v in field '%s'", n, spec.ID),
					v.Location)
				continue
			}
			def.numberSet[n] = struct{}{}
			def.Enum = append(def.Enum, n)
		}
	}
}

func (c *compiler) compileBounds(spec *ast.FieldSpec, def *FieldDefinition) {
	if spec.Min == nil && spec.Max == nil {
		return
	}
	if !def.Kind.IsNumeric() {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' of type %s cannot declare min/max", spec.ID, def.Kind),
			spec.Location)
		return
	}
	if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has min %v greater than max %v", spec.ID, *spec.Min, *spec.Max),
			spec.Location)
	}
}

func (c *compiler) compileStringConstraints(spec *ast.FieldSpec, def *FieldDefinition) {
	if spec.Pattern == "" && spec.MinLength == nil && spec.MaxLength == nil {
		return
	}
	if def.Kind != KindString {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' of type %s cannot declare pattern or length limits", spec.ID, def.Kind),
			spec.Location)
		return
	}

	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			c.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Field '%s' has an invalid pattern: %v", spec.ID, err),
				spec.Location)
		}
		def.Pattern = re
	}

	if spec.MinLength != nil && *spec.MinLength < 0 {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has negative min_length %d", spec.ID, *spec.MinLength),
			spec.Location)
	}
	if spec.MaxLength != nil && *spec.MaxLength < 0 {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has negative max_length %d", spec.ID, *spec.MaxLength),
			spec.Location)
	}
	if spec.MinLength != nil && spec.MaxLength != nil && *spec.MinLength > *spec.MaxLength {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Field '%s' has min_length %d greater than max_length %d", spec.ID, *spec.MinLength, *spec.MaxLength),
			spec.Location)
	}
}

func (c *compiler) compileRules(spec *ast.FieldSpec) {
	owner, ok := c.cat.index[spec.ID]
	if !ok || c.specs[spec.ID] != spec {
		// Missing or duplicate identifier, already reported.
		return
	}

	for i, rs := range spec.Rules {
		name := rs.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", spec.ID, i+1)
		}
		if rule := c.compileRule(rs, name, spec.ID); rule != nil {
			owner.Rules = append(owner.Rules, rule)
			c.cat.rules = append(c.cat.rules, rule)
		}
	}
}

func (c *compiler) compileRule(rs *ast.RuleSpec, name, fieldID string) *Rule {
	before := c.errors.Count()

	if rs.When == nil {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule '%s' on field '%s' has no trigger", name, fieldID),
			rs.Location,
			schemaErrors.SuggestMissingField("when", `{field: ..., operator: "==", value: "Y"}`))
		return nil
	}
	when := rs.When

	switch {
	case when.Field == "":
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Trigger of rule '%s' on field '%s' names no field", name, fieldID),
			when.Location,
			schemaErrors.SuggestMissingField("field", ""))
	case when.Field == fieldID:
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule '%s' on field '%s' is triggered by the field itself", name, fieldID),
			when.Location)
	case !c.cat.Has(when.Field):
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeReference,
			fmt.Sprintf("Rule '%s' on field '%s' references unknown field '%s'", name, fieldID, when.Field),
			when.Location,
			schemaErrors.SuggestFieldID(when.Field, c.cat.IDs()))
	}

	c.checkTrigger(when, name)
	if c.errors.Count() == before {
		c.checkTriggerValues(when, name)
	}
	consequence := c.errors.Count()
	c.checkConsequence(rs, name, fieldID)
	if c.errors.Count() == consequence && rs.Requirement == ast.RequirementEquals {
		c.checkExpectedValue(rs, name, fieldID)
	}

	if c.errors.Count() > before {
		return nil
	}

	var expected any
	if rs.Value != nil {
		expected = rs.Value.Interface()
	}
	var triggerValue any
	if when.Value != nil {
		triggerValue = when.Value.Interface()
	}

	return &Rule{
		Name:  name,
		Field: fieldID,
		Trigger: Trigger{
			Field:    when.Field,
			Operator: when.Operator,
			Value:    triggerValue,
		},
		Requirement: rs.Requirement,
		Value:       expected,
	}
}

func (c *compiler) checkTrigger(when *ast.TriggerSpec, name string) {
	known := false
	for _, op := range ast.Operators {
		if op == when.Operator {
			known = true
			break
		}
	}
	if !known {
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule '%s' uses unknown operator '%s'", name, when.Operator),
			when.Location,
			schemaErrors.SuggestOperator(string(when.Operator), operatorNames()))
		return
	}

	switch when.Operator {
	case ast.OperatorPresent:
		return
	case ast.OperatorIn, ast.OperatorNotIn:
		if when.Value == nil || when.Value.Type != ast.ValueTypeArray {
			c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Operator '%s' in rule '%s' requires a list value", when.Operator, name),
				when.Location,
				"Use a list, e.g. value: [\"Y\", \"N\"]")
		}
	case ast.OperatorLessThan, ast.OperatorGreaterThan, ast.OperatorLessEqual, ast.OperatorGreaterEqual:
		if when.Value == nil || when.Value.Type != ast.ValueTypeNumber {
			c.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Operator '%s' in rule '%s' requires a numeric value", when.Operator, name),
				when.Location)
		}
	default:
		if when.Value == nil {
			c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Operator '%s' in rule '%s' requires a value", when.Operator, name),
				when.Location,
				schemaErrors.SuggestMissingField("value", `"Y"`))
		}
	}
}

// checkTriggerValues rejects triggers that can never fire on a valid
// record: a value of the wrong kind, outside the field's enumeration, or an
// ordering comparison on a non-numeric field.
func (c *compiler) checkTriggerValues(when *ast.TriggerSpec, name string) {
	def, ok := c.cat.index[when.Field]
	if !ok || def.Kind == "" {
		return
	}

	var values []*ast.ValueNode
	switch when.Operator {
	case ast.OperatorPresent:
		return
	case ast.OperatorLessThan, ast.OperatorGreaterThan, ast.OperatorLessEqual, ast.OperatorGreaterEqual:
		if !def.Kind.IsNumeric() {
			c.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule '%s' compares field '%s' of type %s with '%s'; ordering needs a numeric field",
					name, when.Field, def.Kind, when.Operator),
				when.Location)
		}
		return
	case ast.OperatorIn, ast.OperatorNotIn:
		values, _ = when.Value.Value.([]*ast.ValueNode)
	default:
		values = []*ast.ValueNode{when.Value}
	}

	for _, v := range values {
		problem := def.literalProblem(v, false)
		if problem == "" {
			continue
		}
		loc := when.Location
		if v != nil && v.Location.IsValid() {
			loc = v.Location
		}
		suggestion := ""
		if def.Kind.IsEnum() {
			suggestion = "Valid values: " + formatValues(def.Enum)
		}
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Trigger of rule '%s' can never fire: field '%s' is %s and %s", name, when.Field, def.Kind, problem),
			loc,
			suggestion)
	}
}

// checkExpectedValue rejects equals consequences no valid value of the
// owning field could satisfy.
func (c *compiler) checkExpectedValue(rs *ast.RuleSpec, name, fieldID string) {
	owner, ok := c.cat.index[fieldID]
	if !ok || owner.Kind == "" {
		return
	}
	problem := owner.literalProblem(rs.Value, true)
	if problem == "" {
		return
	}
	loc := rs.Location
	if rs.Value.Location.IsValid() {
		loc = rs.Value.Location
	}
	c.errors.AddError(schemaErrors.ErrorTypeStructural,
		fmt.Sprintf("Rule '%s' can never be satisfied: field '%s' is %s and %s", name, fieldID, owner.Kind, problem),
		loc)
}

func formatValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func (c *compiler) checkConsequence(rs *ast.RuleSpec, name, fieldID string) {
	switch rs.Requirement {
	case ast.RequirementRequired, ast.RequirementForbidden:
	case ast.RequirementEquals:
		if rs.Value == nil {
			c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule '%s' on field '%s' requires equality but gives no value", name, fieldID),
				rs.Location,
				"Use then: {requirement: equals, value: ...}")
		}
	case "":
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule '%s' on field '%s' has no consequence", name, fieldID),
			rs.Location,
			schemaErrors.SuggestMissingField("then", "required"))
	default:
		c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule '%s' on field '%s' has unknown requirement '%s'", name, fieldID, rs.Requirement),
			rs.Location,
			schemaErrors.SuggestKey(string(rs.Requirement), []string{
				string(ast.RequirementRequired),
				string(ast.RequirementForbidden),
				string(ast.RequirementEquals),
			}))
	}
}

func (c *compiler) compileGroup(spec *ast.GroupSpec, index int) {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("group#%d", index+1)
	}
	before := c.errors.Count()

	if len(spec.Fields) < 2 {
		c.errors.AddError(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Exclusive group '%s' needs at least two fields", name),
			spec.Location)
	}

	seen := make(map[string]bool, len(spec.Fields))
	for _, id := range spec.Fields {
		if seen[id] {
			c.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Exclusive group '%s' lists field '%s' twice", name, id),
				spec.Location)
			continue
		}
		seen[id] = true
		if !c.cat.Has(id) {
			c.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeReference,
				fmt.Sprintf("Exclusive group '%s' references unknown field '%s'", name, id),
				spec.Location,
				schemaErrors.SuggestFieldID(id, c.cat.IDs()))
		}
	}

	if c.errors.Count() > before {
		return
	}
	fields := make([]string, len(spec.Fields))
	copy(fields, spec.Fields)
	c.cat.groups = append(c.cat.groups, &Group{Name: name, Fields: fields})
}

func operatorNames() []string {
	names := make([]string, len(ast.Operators))
	for i, op := range ast.Operators {
		names[i] = string(op)
	}
	return names
}
