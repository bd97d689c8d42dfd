package catalog

import (
	"errors"
	"strings"
	"testing"

	"findatex-hq/regcheck/pkg/schema/ast"
	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
)

const validSchema = `
schema_version: "1.0"
name: test-ept
template: EPT
template_version: V21
fields:
  - id: 00001_EPT_Version
    type: enum
    required: true
    values: ["V21"]
  - id: 01130_Maturity_Date
    type: date
    rules:
      - name: maturity-date-when-contractual
        when: {field: 01125_Has_A_Contractual_Maturity_Date, operator: "==", value: "Y"}
        then: required
      - when: {field: 01125_Has_A_Contractual_Maturity_Date, operator: "==", value: "N"}
        then: forbidden
  - id: 01125_Has_A_Contractual_Maturity_Date
    type: enum
    values: ["Y", "N"]
  - id: 01090_SRI
    type: integer-enum
    required: true
    values: [1, 2, 3, 4, 5, 6, 7]
  - id: 02220_Ongoing_Costs
    type: number
    min: 0
    max: 1
  - id: 00016_Portfolio_Manufacturer_Email
    type: string
    pattern: '^[^@]+@[^@]+$'
    max_length: 255
  - id: 00060_Portfolio_Currency
    type: currency-code
exclusive_groups:
  - name: one-contact
    fields: [00016_Portfolio_Manufacturer_Email, 00060_Portfolio_Currency]
`

func TestLoadBytes_Valid(t *testing.T) {
	cat, err := LoadBytes([]byte(validSchema), "memory://valid")
	if err != nil {
		t.Fatalf("LoadBytes() failed: %v", err)
	}

	if cat.Name() != "test-ept" || cat.Template() != "EPT" || cat.TemplateVersion() != "V21" {
		t.Errorf("metadata = %q %q %q", cat.Name(), cat.Template(), cat.TemplateVersion())
	}
	if cat.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", cat.Len())
	}

	// Declaration order is preserved even though a rule references a field
	// declared after it.
	ids := cat.IDs()
	if ids[1] != "01130_Maturity_Date" || ids[2] != "01125_Has_A_Contractual_Maturity_Date" {
		t.Errorf("IDs() = %v", ids)
	}

	required := cat.Required()
	if len(required) != 2 || required[0].ID != "00001_EPT_Version" || required[1].ID != "01090_SRI" {
		t.Errorf("Required() = %v", required)
	}

	rules := cat.Rules()
	if len(rules) != 2 {
		t.Fatalf("len(Rules()) = %d, want 2", len(rules))
	}
	if rules[0].Name != "maturity-date-when-contractual" || rules[0].Field != "01130_Maturity_Date" {
		t.Errorf("rules[0] = %+v", rules[0])
	}
	if rules[1].Name != "01130_Maturity_Date#2" {
		t.Errorf("unnamed rule got name %q", rules[1].Name)
	}
	if rules[1].Requirement != ast.RequirementForbidden || rules[1].Trigger.Value != "N" {
		t.Errorf("rules[1] = %+v", rules[1])
	}

	sri, ok := cat.Field("01090_SRI")
	if !ok {
		t.Fatal("Field(01090_SRI) not found")
	}
	if sri.Kind != KindIntegerEnum || !sri.AllowsNumber(7) || sri.AllowsNumber(8) {
		t.Errorf("SRI definition = %+v", sri)
	}

	version, _ := cat.Field("00001_EPT_Version")
	if !version.AllowsString("V21") || version.AllowsString("v21") {
		t.Error("string enumeration must match exactly")
	}

	email, _ := cat.Field("00016_Portfolio_Manufacturer_Email")
	if email.Pattern == nil || !email.Pattern.MatchString("a@b") {
		t.Error("pattern not compiled")
	}

	groups := cat.Groups()
	if len(groups) != 1 || groups[0].Name != "one-contact" {
		t.Errorf("Groups() = %v", groups)
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	cat, err := LoadBytes([]byte(validSchema), "memory://valid")
	if err != nil {
		t.Fatalf("LoadBytes() failed: %v", err)
	}
	fields := cat.Fields()
	fields[0] = nil
	if cat.Fields()[0] == nil {
		t.Error("Fields() must not expose the internal slice")
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		wantType schemaErrors.ErrorType
		wantMsg  string
	}{
		{
			name:     "duplicate identifier",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\n  - {id: A, type: number}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "Duplicate field id 'A'",
		},
		{
			name: "unknown rule reference",
			schema: `name: x
fields:
  - id: 01125_Has_A_Contractual_Maturity_Date
    type: enum
    values: ["Y", "N"]
  - id: 01130_Maturity_Date
    type: date
    rules:
      - when: {field: 01125_Has_Contractual_Maturity_Date, operator: "==", value: "Y"}
        then: required
`,
			wantType: schemaErrors.ErrorTypeReference,
			wantMsg:  "references unknown field '01125_Has_Contractual_Maturity_Date'",
		},
		{
			name:     "empty enumeration",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: []}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "empty enumeration",
		},
		{
			name:     "enumeration without values",
			schema:   "name: x\nfields:\n  - {id: A, type: integer-enum}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "empty enumeration",
		},
		{
			name:     "min greater than max",
			schema:   "name: x\nfields:\n  - {id: A, type: number, min: 10, max: 1}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "min 10 greater than max 1",
		},
		{
			name:     "missing identifier",
			schema:   "name: x\nfields:\n  - {type: string}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "missing its identifier",
		},
		{
			name:     "unknown kind",
			schema:   "name: x\nfields:\n  - {id: A, type: strng}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "unknown type 'strng'",
		},
		{
			name:     "invalid pattern",
			schema:   "name: x\nfields:\n  - {id: A, type: string, pattern: '[a-'}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "invalid pattern",
		},
		{
			name:     "min_length greater than max_length",
			schema:   "name: x\nfields:\n  - {id: A, type: string, min_length: 5, max_length: 2}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "min_length 5 greater than max_length 2",
		},
		{
			name:     "bounds on a string",
			schema:   "name: x\nfields:\n  - {id: A, type: string, min: 1}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "cannot declare min/max",
		},
		{
			name:     "fractional integer enumeration",
			schema:   "name: x\nfields:\n  - {id: A, type: integer-enum, values: [1, 2.5]}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "is not an integer",
		},
		{
			name:     "unknown operator",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: A, operator: equals, value: x}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "unknown operator 'equals'",
		},
		{
			name:     "in without list",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: A, operator: in, value: x}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "requires a list value",
		},
		{
			name:     "equals without value",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: A, operator: present}, then: {requirement: equals}}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "gives no value",
		},
		{
			name:     "self trigger",
			schema:   "name: x\nfields:\n  - id: A\n    type: string\n    rules:\n      - {when: {field: A, operator: present}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "triggered by the field itself",
		},
		{
			name:     "group of one",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\nexclusive_groups:\n  - {name: g, fields: [A]}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "at least two fields",
		},
		{
			name:     "group with unknown member",
			schema:   "name: x\nfields:\n  - {id: A, type: string}\nexclusive_groups:\n  - {name: g, fields: [A, B]}\n",
			wantType: schemaErrors.ErrorTypeReference,
			wantMsg:  "references unknown field 'B'",
		},
		{
			name:     "trigger value outside enumeration",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: [\"Y\", \"N\"]}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: A, operator: \"==\", value: \"Yes\"}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  `can never fire: field 'A' is enum and "Yes" is not one of the field's values`,
		},
		{
			name:     "quoted number on integer enumeration",
			schema:   "name: x\nfields:\n  - {id: K, type: integer-enum, values: [1, 2]}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: K, operator: \"==\", value: \"1\"}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  `field 'K' is integer-enum and string "1" is not a number`,
		},
		{
			name:     "in list member outside enumeration",
			schema:   "name: x\nfields:\n  - {id: K, type: integer-enum, values: [1, 2]}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: K, operator: in, value: [2, 9]}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "9 is not one of the field's values",
		},
		{
			name:     "trigger value of the wrong kind",
			schema:   "name: x\nfields:\n  - {id: N, type: number}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: N, operator: \"!=\", value: \"0\"}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "can never fire",
		},
		{
			name:     "malformed date trigger",
			schema:   "name: x\nfields:\n  - {id: D, type: date}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: D, operator: \"==\", value: \"31/12/2030\"}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  `"31/12/2030" is not a valid date`,
		},
		{
			name:     "ordering on a non-numeric field",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: [\"Y\", \"N\"]}\n  - id: B\n    type: string\n    rules:\n      - {when: {field: A, operator: \">\", value: 1}, then: required}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "ordering needs a numeric field",
		},
		{
			name:     "equals value of the wrong kind",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: [\"Y\", \"N\"]}\n  - id: D\n    type: number\n    rules:\n      - {when: {field: A, operator: \"==\", value: \"Y\"}, then: {requirement: equals, value: \"abc\"}}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  `can never be satisfied: field 'D' is number and string "abc" is not a number`,
		},
		{
			name:     "equals value outside bounds",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: [\"Y\", \"N\"]}\n  - id: D\n    type: number\n    min: 0\n    max: 1\n    rules:\n      - {when: {field: A, operator: present}, then: {requirement: equals, value: 5}}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "5 is above max 1",
		},
		{
			name:     "equals value outside enumeration",
			schema:   "name: x\nfields:\n  - {id: A, type: enum, values: [\"Y\", \"N\"]}\n  - id: E\n    type: enum\n    values: [\"Y\", \"N\"]\n    rules:\n      - {when: {field: A, operator: present}, then: {requirement: equals, value: \"y\"}}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  `"y" is not one of the field's values`,
		},
		{
			name:     "unsupported schema version",
			schema:   "schema_version: \"9\"\nname: x\nfields:\n  - {id: A, type: string}\n",
			wantType: schemaErrors.ErrorTypeStructural,
			wantMsg:  "Unsupported schema_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.schema), "memory://"+tt.name)
			if err == nil {
				t.Fatal("LoadBytes() expected error")
			}

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error type = %T, want *SchemaError: %v", err, err)
			}
			if !schemaErr.Errors.HasErrorType(tt.wantType) {
				t.Errorf("missing %s error in: %v", tt.wantType, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should contain %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestCompile_WellTypedRuleValues(t *testing.T) {
	schema := `name: x
fields:
  - {id: A, type: enum, values: ["Y", "N"]}
  - {id: K, type: integer-enum, values: [1, 2, 3]}
  - {id: N, type: number, min: 0}
  - {id: D, type: date}
  - {id: C, type: currency-code}
  - id: B
    type: number
    min: 0
    max: 1
    rules:
      - {when: {field: A, operator: "==", value: "Y"}, then: required}
      - {when: {field: K, operator: not_in, value: [1, 2]}, then: forbidden}
      - {when: {field: N, operator: ">", value: -1}, then: required}
      - {when: {field: D, operator: "==", value: "2030-12-31"}, then: required}
      - {when: {field: C, operator: "!=", value: "EUR"}, then: {requirement: equals, value: 0.5}}
`
	cat, err := LoadBytes([]byte(schema), "memory://typed")
	if err != nil {
		t.Fatalf("LoadBytes() failed: %v", err)
	}
	if len(cat.Rules()) != 5 {
		t.Errorf("len(Rules()) = %d, want 5", len(cat.Rules()))
	}
}

func TestCompile_ReportsEveryUnmatchableTriggerValue(t *testing.T) {
	schema := `name: x
fields:
  - {id: A, type: enum, values: ["Y", "N"]}
  - id: B
    type: string
    rules:
      - {when: {field: A, operator: in, value: ["Yes", "No", "N"]}, then: required}
`
	_, err := LoadBytes([]byte(schema), "memory://in-list")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if schemaErr.Count() != 2 {
		t.Errorf("Count() = %d, want 2:\n%v", schemaErr.Count(), err)
	}
	if got := schemaErr.Errors.Errors[0].Suggestion; got != "Valid values: Y, N" {
		t.Errorf("Suggestion = %q", got)
	}
}

func TestCompile_AccumulatesAllProblems(t *testing.T) {
	schema := `name: x
fields:
  - {id: A, type: enum, values: []}
  - {id: A, type: string}
  - {id: B, type: number, min: 2, max: 1}
  - id: C
    type: string
    rules:
      - {when: {field: Z, operator: present}, then: required}
`
	_, err := LoadBytes([]byte(schema), "memory://many")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if schemaErr.Count() != 4 {
		t.Errorf("Count() = %d, want 4:\n%v", schemaErr.Count(), err)
	}
}

func TestCompile_UnknownReferenceSuggestion(t *testing.T) {
	schema := `name: x
fields:
  - {id: 01125_Has_A_Contractual_Maturity_Date, type: enum, values: ["Y", "N"]}
  - id: 01130_Maturity_Date
    type: date
    rules:
      - when: {field: 01125_Has_Contractual_Maturity_Date, operator: "==", value: "Y"}
        then: required
`
	_, err := LoadBytes([]byte(schema), "memory://suggest")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	refs := schemaErr.Errors.ByType(schemaErrors.ErrorTypeReference)
	if len(refs) != 1 {
		t.Fatalf("len(reference errors) = %d, want 1", len(refs))
	}
	want := "Did you mean '01125_Has_A_Contractual_Maturity_Date'?"
	if refs[0].Suggestion != want {
		t.Errorf("Suggestion = %q, want %q", refs[0].Suggestion, want)
	}
	if refs[0].Location.Line != 7 {
		t.Errorf("Location.Line = %d, want 7", refs[0].Location.Line)
	}
}

func TestCompile_NilDefinition(t *testing.T) {
	if _, err := Compile(nil); err == nil {
		t.Error("Compile(nil) should fail")
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile() should panic on an invalid definition")
		}
	}()
	MustCompile(&ast.Definition{Name: "x", Fields: []*ast.FieldSpec{{ID: "A", Type: "nope"}}})
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(string(k))
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("enum-of-string"); ok {
		t.Error("ParseKind should reject unknown names")
	}
}
