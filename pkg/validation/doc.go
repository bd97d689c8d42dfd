// Package validation applies a compiled catalog to records.
//
// A call runs four checks on every record and never stops early:
//
//  1. required fields absent from the record (MissingRequiredField)
//  2. undeclared fields, in strict mode only (UnknownField)
//  3. per-field type, format, enumeration and range checks
//  4. conditional rules in catalog order, then exclusive groups
//     (ConditionalRequirementViolation)
//
// Validation is a pure function of the catalog and the record: no I/O, no
// logging and no state shared between calls other than the read-only
// catalog.
//
//	res := validation.Validate(cat, validation.Single(record))
//	if !res.Valid {
//	    for _, e := range res.Errors {
//	        fmt.Println(e)
//	    }
//	}
//
// Batches keep input order and may be spread over goroutines:
//
//	res := validation.Validate(cat, validation.Batch(records),
//	    validation.WithWorkers(runtime.NumCPU()),
//	    validation.WithStrict(true))
package validation
