// Package ast provides the parsed, uncompiled form of a field schema definition.
//
// A Definition mirrors the schema YAML one-to-one and keeps source locations
// on every node so that the compiler can report problems precisely:
//
//	Definition
//	├── Metadata (name, template, template_version, ...)
//	├── Fields ([]*FieldSpec, declaration order)
//	│   ├── Type, Required, Values, Min/Max, Pattern, Min/MaxLength
//	│   └── Rules ([]*RuleSpec)
//	│       ├── When (*TriggerSpec: field, operator, value)
//	│       └── Requirement (required, forbidden, equals + value)
//	└── ExclusiveGroups ([]*GroupSpec)
//
// AST nodes should be treated as immutable after parsing. The catalog
// compiler reads them and builds its own representation.
package ast
