// regcheck validates FinDatEx EPT and TPT data files against schema-driven
// field catalogs.
//
// Usage:
//
//	# Validate an EPT file against the built-in EPT V2.1 catalog
//	regcheck validate --template ept fund.json
//
//	# Validate several TPT files and emit JUnit XML for CI
//	regcheck validate -t tpt --format junit -o report.xml positions/*.yaml
//
//	# Check custom schema definitions
//	regcheck schema lint schemas/
//
//	# Serve the validation API
//	regcheck serve --config regcheck.yaml
//
// Exit status is 0 when every document is valid, 1 when any document
// failed validation and 2 on usage, configuration or I/O errors.
package main

func main() {
	Execute()
}
