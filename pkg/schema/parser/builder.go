package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"findatex-hq/regcheck/pkg/schema/ast"
	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
)

var (
	definitionKeys  = []string{"schema_version", "name", "template", "template_version", "description", "fields", "exclusive_groups"}
	fieldKeys       = []string{"id", "type", "required", "description", "values", "min", "max", "pattern", "min_length", "max_length", "rules"}
	ruleKeys        = []string{"name", "when", "then"}
	triggerKeys     = []string{"field", "operator", "value"}
	consequenceKeys = []string{"requirement", "value"}
	groupKeys       = []string{"name", "fields"}
)

// builder constructs AST nodes from intermediate YAML structures.
// It checks document shape only; semantic checks belong to the catalog compiler.
type builder struct {
	sourcePath string
	errors     *schemaErrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string) *builder {
	return &builder{
		sourcePath: sourcePath,
		errors:     schemaErrors.NewErrorList(),
	}
}

func (b *builder) location(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{
		File:   b.sourcePath,
		Line:   node.Line,
		Column: node.Column,
	}
}

// buildDefinition transforms a yamlDefinition into an ast.Definition.
func (b *builder) buildDefinition(yd *yamlDefinition) (*ast.Definition, error) {
	def := &ast.Definition{
		SchemaVersion:   yd.SchemaVersion,
		Name:            yd.Name,
		Template:        yd.Template,
		TemplateVersion: yd.TemplateVersion,
		Description:     yd.Description,
		SourceFile:      b.sourcePath,
		Fields:          make([]*ast.FieldSpec, 0, len(yd.Fields)),
		Location: ast.Location{
			File:   b.sourcePath,
			Line:   1,
			Column: 1,
		},
	}

	var root *yaml.Node
	if yd.node != nil && yd.node.Kind == yaml.DocumentNode && len(yd.node.Content) > 0 {
		root = yd.node.Content[0]
	}
	b.checkKeys(root, definitionKeys, "schema definition")

	for i := range yd.Fields {
		def.Fields = append(def.Fields, b.buildField(&yd.Fields[i]))
	}

	for i := range yd.ExclusiveGroups {
		yg := &yd.ExclusiveGroups[i]
		b.checkKeys(yg.node, groupKeys, "exclusive group")
		def.ExclusiveGroups = append(def.ExclusiveGroups, &ast.GroupSpec{
			Name:     yg.Name,
			Fields:   yg.Fields,
			Location: b.location(yg.node),
		})
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return def, nil
}

// buildField transforms a yamlField into an ast.FieldSpec.
func (b *builder) buildField(yf *yamlField) *ast.FieldSpec {
	b.checkKeys(yf.node, fieldKeys, fmt.Sprintf("field '%s'", yf.ID))

	field := &ast.FieldSpec{
		ID:          yf.ID,
		Type:        yf.Type,
		Required:    yf.Required,
		Description: yf.Description,
		Min:         yf.Min,
		Max:         yf.Max,
		Pattern:     yf.Pattern,
		MinLength:   yf.MinLength,
		MaxLength:   yf.MaxLength,
		Location:    b.location(yf.node),
	}

	// An explicit "values: []" is kept as an empty, non-nil set so the
	// compiler can tell it apart from an omitted enumeration.
	if valuesNode := mappingValue(yf.node, "values"); valuesNode != nil && valuesNode.Kind == yaml.SequenceNode {
		field.Values = make([]*ast.ValueNode, 0, len(yf.Values))
	}
	for i := range yf.Values {
		if v := b.buildValue(&yf.Values[i]); v != nil {
			field.Values = append(field.Values, v)
		}
	}

	for i := range yf.Rules {
		if rule := b.buildRule(&yf.Rules[i], yf.ID); rule != nil {
			field.Rules = append(field.Rules, rule)
		}
	}

	return field
}

// buildRule transforms a yamlRule into an ast.RuleSpec.
func (b *builder) buildRule(yr *yamlRule, fieldID string) *ast.RuleSpec {
	b.checkKeys(yr.node, ruleKeys, fmt.Sprintf("rule '%s' on field '%s'", yr.Name, fieldID))

	rule := &ast.RuleSpec{
		Name:     yr.Name,
		Location: b.location(yr.node),
	}

	if yr.When.node != nil {
		b.checkKeys(yr.When.node, triggerKeys, fmt.Sprintf("trigger of rule '%s'", yr.Name))
		rule.When = &ast.TriggerSpec{
			Field:    yr.When.Field,
			Operator: ast.Operator(yr.When.Operator),
			Value:    b.buildValue(&yr.When.Value),
			Location: b.location(yr.When.node),
		}
	}

	switch yr.Then.Kind {
	case 0:
		// Missing consequence; reported by the compiler.
	case yaml.ScalarNode:
		rule.Requirement = ast.Requirement(yr.Then.Value)
	case yaml.MappingNode:
		b.checkKeys(&yr.Then, consequenceKeys, fmt.Sprintf("consequence of rule '%s'", yr.Name))
		var yc yamlConsequence
		if err := yr.Then.Decode(&yc); err != nil {
			b.errors.AddError(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid consequence for rule '%s': %v", yr.Name, err),
				b.location(&yr.Then))
			return nil
		}
		rule.Requirement = ast.Requirement(yc.Requirement)
		rule.Value = b.buildValue(&yc.Value)
	default:
		b.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Consequence of rule '%s' must be a requirement name or a mapping", yr.Name),
			b.location(&yr.Then),
			"Use 'then: required', 'then: forbidden' or 'then: {requirement: equals, value: ...}'")
		return nil
	}

	return rule
}

// buildValue converts a YAML literal into an ast.ValueNode. A zero node
// (key not present) yields nil.
func (b *builder) buildValue(node *yaml.Node) *ast.ValueNode {
	if node == nil || node.Kind == 0 {
		return nil
	}

	loc := b.location(node)

	switch node.Kind {
	case yaml.AliasNode:
		return b.buildValue(node.Alias)

	case yaml.SequenceNode:
		items := make([]*ast.ValueNode, 0, len(node.Content))
		for _, item := range node.Content {
			if v := b.buildValue(item); v != nil {
				items = append(items, v)
			}
		}
		return &ast.ValueNode{Type: ast.ValueTypeArray, Value: items, Location: loc}

	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return &ast.ValueNode{Type: ast.ValueTypeNull, Location: loc}
		case "!!bool":
			var v bool
			if err := node.Decode(&v); err != nil {
				b.errors.AddError(schemaErrors.ErrorTypeSyntax, fmt.Sprintf("Invalid boolean %q", node.Value), loc)
				return nil
			}
			return &ast.ValueNode{Type: ast.ValueTypeBoolean, Value: v, Location: loc}
		case "!!int", "!!float":
			var v float64
			if err := node.Decode(&v); err != nil {
				b.errors.AddError(schemaErrors.ErrorTypeSyntax, fmt.Sprintf("Invalid number %q", node.Value), loc)
				return nil
			}
			return &ast.ValueNode{Type: ast.ValueTypeNumber, Value: v, Location: loc}
		default:
			// Strings, and timestamps kept in their textual form.
			return &ast.ValueNode{Type: ast.ValueTypeString, Value: node.Value, Location: loc}
		}
	}

	b.errors.AddError(schemaErrors.ErrorTypeStructural, "Value must be a scalar or a list of scalars", loc)
	return nil
}

// checkKeys reports keys of a mapping node that are not in valid.
func (b *builder) checkKeys(node *yaml.Node, valid []string, what string) {
	for _, key := range mappingKeys(node) {
		if !contains(valid, key.Value) {
			b.errors.AddErrorWithSuggestion(schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Unknown key '%s' in %s", key.Value, what),
				b.location(key),
				schemaErrors.SuggestKey(key.Value, valid))
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
