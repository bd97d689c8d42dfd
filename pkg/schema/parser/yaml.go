package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDefinition is the intermediate structure for a schema definition file.
// It matches the YAML structure before transformation to AST.
type yamlDefinition struct {
	SchemaVersion   string      `yaml:"schema_version"`
	Name            string      `yaml:"name"`
	Template        string      `yaml:"template"`
	TemplateVersion string      `yaml:"template_version"`
	Description     string      `yaml:"description"`
	Fields          []yamlField `yaml:"fields"`
	ExclusiveGroups []yamlGroup `yaml:"exclusive_groups"`

	node *yaml.Node
}

// yamlField is an intermediate field spec.
type yamlField struct {
	ID          string      `yaml:"id"`
	Type        string      `yaml:"type"`
	Required    bool        `yaml:"required"`
	Description string      `yaml:"description"`
	Values      []yaml.Node `yaml:"values"`
	Min         *float64    `yaml:"min"`
	Max         *float64    `yaml:"max"`
	Pattern     string      `yaml:"pattern"`
	MinLength   *int        `yaml:"min_length"`
	MaxLength   *int        `yaml:"max_length"`
	Rules       []yamlRule  `yaml:"rules"`

	node *yaml.Node
}

// yamlRule is an intermediate conditional rule. Then is either a scalar
// requirement or a mapping with a requirement and an expected value.
type yamlRule struct {
	Name string      `yaml:"name"`
	When yamlTrigger `yaml:"when"`
	Then yaml.Node   `yaml:"then"`

	node *yaml.Node
}

type yamlTrigger struct {
	Field    string    `yaml:"field"`
	Operator string    `yaml:"operator"`
	Value    yaml.Node `yaml:"value"`

	node *yaml.Node
}

type yamlConsequence struct {
	Requirement string    `yaml:"requirement"`
	Value       yaml.Node `yaml:"value"`
}

type yamlGroup struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`

	node *yaml.Node
}

// The UnmarshalYAML hooks keep the originating node so the builder can
// report line and column for each element.

func (f *yamlField) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlField
	if err := value.Decode((*plain)(f)); err != nil {
		return err
	}
	f.node = value
	return nil
}

func (r *yamlRule) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlRule
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	r.node = value
	return nil
}

func (t *yamlTrigger) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlTrigger
	if err := value.Decode((*plain)(t)); err != nil {
		return err
	}
	t.node = value
	return nil
}

func (g *yamlGroup) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlGroup
	if err := value.Decode((*plain)(g)); err != nil {
		return err
	}
	g.node = value
	return nil
}

// parseYAMLFile reads and parses a schema file into the intermediate structure.
func parseYAMLFile(path string) (*yamlDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data)
}

// parseYAMLBytes parses YAML bytes into the intermediate structure.
func parseYAMLBytes(data []byte) (*yamlDefinition, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var def yamlDefinition
	if node.Kind == 0 {
		// Empty document
		return &def, nil
	}
	if err := node.Decode(&def); err != nil {
		return nil, err
	}

	def.node = &node
	return &def, nil
}

// mappingKeys returns the keys of a mapping node with their nodes.
func mappingKeys(node *yaml.Node) []*yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i])
	}
	return keys
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
