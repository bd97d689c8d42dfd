// Package catalog compiles schema definitions into immutable field
// catalogs.
//
// Compilation is the only place structural schema problems are caught.
// A definition that compiles is trusted by package validation without
// further checks:
//
//   - identifiers are unique
//   - every rule trigger and exclusive group member names a declared field
//   - enumerations are non-empty and typed consistently with their field
//   - numeric bounds satisfy min <= max
//   - patterns compile as RE2 expressions
//
// Problems are accumulated and returned together as a *SchemaError:
//
//	cat, err := catalog.Load("schemas/ept.yaml")
//	if err != nil {
//	    log.Fatal(err) // halts startup; never reported per record
//	}
//	for _, f := range cat.Fields() {
//	    fmt.Println(f.ID, f.Kind)
//	}
package catalog
