// Package report renders validation results as JSON, text, CSV or JUnit
// XML.
//
// The JSON shape is stable:
//
//	{
//	  "valid": false,
//	  "catalog": "findatex-ept",
//	  "template": "EPT",
//	  "template_version": "V21",
//	  "batch": false,
//	  "records": 1,
//	  "invalid_records": 1,
//	  "error_count": 1,
//	  "errors": [
//	    {"field": "00006_EPT_Data_Reporting_Narratives", "kind": "EnumMismatch",
//	     "message": "value \"X\" is not one of [\"Y\", \"N\"]"}
//	  ],
//	  "summary": {"EnumMismatch": 1}
//	}
//
// "field" is null for record-level errors and "record" appears only for
// batch input.
package report
