// Package parser reads schema definition files (YAML, or JSON as a YAML
// subset) and builds located ASTs for the catalog compiler.
//
// The parser only checks document shape: unknown keys, malformed
// consequences and non-scalar literals. Whether a definition makes sense
// (unique identifiers, resolvable rule references, non-empty enumerations)
// is decided by package catalog.
//
//	p := parser.NewParser()
//	def, err := p.Parse("schemas/ept.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(def.Name, def.FieldCount())
package parser
