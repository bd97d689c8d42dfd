// Package errors provides located error types for schema definition parsing
// and compilation.
//
// # Error Types
//
// ErrorTypeSyntax: YAML syntax errors (malformed YAML)
//
// ErrorTypeStructural: malformed field specs (missing id, duplicate id,
// unknown type, empty enumeration, min greater than max, bad pattern)
//
// ErrorTypeReference: a rule trigger or exclusive group names a field that
// is not declared in the same schema
//
// ErrorTypeIO: file I/O errors
//
// # Accumulation
//
// Schema problems are collected, not returned one at a time:
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeStructural, "Duplicate field id '00010_Portfolio_Manufacturer_Name'", loc)
//	errList.AddErrorWithSuggestion(errors.ErrorTypeReference, "Unknown field '01125_Has_Contractual_Maturity'", loc,
//	    errors.SuggestFieldID("01125_Has_Contractual_Maturity", ids))
//
//	if errList.HasErrors() {
//	    return errList.ToError()
//	}
//
// # Error Format
//
// Each problem renders as a compiler-style diagnostic followed by the
// source context and suggestion when present. Lists are printed in file
// order:
//
//	schemas/ept.yaml:212:17: reference: Rule 'maturity-date-when-contractual' references unknown field '01125_Has_Contractual_Maturity'
//	   210 |     rules:
//	   211 |       - name: maturity-date-when-contractual
//	-> 212 |         when: {field: 01125_Has_Contractual_Maturity, operator: "==", value: "Y"}
//	       |                ^
//	      = suggestion: Did you mean '01125_Has_A_Contractual_Maturity_Date'?
package errors
