package reader

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
)

func TestReadFile_JSONAndYAMLAgree(t *testing.T) {
	fromYAML, err := ReadFile("testdata/ept-minimal.yaml")
	if err != nil {
		t.Fatalf("ReadFile(yaml) failed: %v", err)
	}
	fromJSON, err := ReadFile("testdata/ept-minimal.json")
	if err != nil {
		t.Fatalf("ReadFile(json) failed: %v", err)
	}

	if fromYAML.Batch || fromJSON.Batch {
		t.Error("a mapping should be read as a single record")
	}
	if !reflect.DeepEqual(fromYAML, fromJSON) {
		t.Errorf("records differ:\nyaml: %#v\njson: %#v", fromYAML.Records[0], fromJSON.Records[0])
	}

	rec := fromYAML.Records[0]
	if v, ok := rec["00040_Type_Of_Identification_Code_For_The_Fund_Share_Or_Portfolio"].(float64); !ok || v != 1 {
		t.Errorf("integer literal decoded as %T %v, want float64 1", rec["00040_Type_Of_Identification_Code_For_The_Fund_Share_Or_Portfolio"], v)
	}
	if v, ok := rec["00005_File_Generation_Date_And_Time"].(string); !ok || v != "2024-01-01T00:00:00Z" {
		t.Errorf("timestamp decoded as %#v", rec["00005_File_Generation_Date_And_Time"])
	}
}

func TestReadBytes_UnquotedTimestamps(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		json string
	}{
		{"midnight utc date-time", "d: 2024-01-01T00:00:00Z\n", `{"d": "2024-01-01T00:00:00Z"}`},
		{"offset date-time", "d: 2024-03-31T17:45:00+02:00\n", `{"d": "2024-03-31T17:45:00+02:00"}`},
		{"fractional seconds", "d: 2024-03-31T17:45:00.250Z\n", `{"d": "2024-03-31T17:45:00.250Z"}`},
		{"bare date", "d: 2024-01-01\n", `{"d": "2024-01-01"}`},
		{"in a batch", "- d: 2024-01-01T00:00:00Z\n", `[{"d": "2024-01-01T00:00:00Z"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fromYAML, err := ReadBytes([]byte(tt.yaml), FormatYAML, "yaml")
			if err != nil {
				t.Fatalf("ReadBytes(yaml) failed: %v", err)
			}
			fromJSON, err := ReadBytes([]byte(tt.json), FormatJSON, "json")
			if err != nil {
				t.Fatalf("ReadBytes(json) failed: %v", err)
			}
			if !reflect.DeepEqual(fromYAML, fromJSON) {
				t.Errorf("records differ:\nyaml: %#v\njson: %#v", fromYAML.Records, fromJSON.Records)
			}
		})
	}
}

func TestReadFile_Batch(t *testing.T) {
	subject, err := ReadFile("testdata/batch.yaml")
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !subject.Batch || subject.Len() != 2 {
		t.Fatalf("Batch = %v, Len() = %d, want batch of 2", subject.Batch, subject.Len())
	}
	if subject.Records[1]["0003_Portfolio_name"] != "Second" {
		t.Errorf("record order not preserved: %v", subject.Records)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("testdata/nope.json")
	var readErr *Error
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, want *reader.Error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestReadBytes(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		format    Format
		wantLen   int
		wantBatch bool
		wantErr   string
	}{
		{name: "json object", data: `{"a": 1}`, format: FormatJSON, wantLen: 1},
		{name: "json array", data: `[{"a": 1}, {"a": 2}]`, format: FormatJSON, wantLen: 2, wantBatch: true},
		{name: "sniffed json", data: "  \n{\"a\": 1}", format: FormatAuto, wantLen: 1},
		{name: "sniffed yaml", data: "a: 1\nb: two\n", format: FormatAuto, wantLen: 1},
		{name: "yaml list", data: "- a: 1\n- a: 2\n- a: 3\n", format: FormatYAML, wantLen: 3, wantBatch: true},
		{name: "empty batch", data: `[]`, format: FormatJSON, wantLen: 0, wantBatch: true},
		{name: "scalar document", data: `"hello"`, format: FormatJSON, wantErr: "want a mapping or a list"},
		{name: "list of scalars", data: "- 1\n- 2\n", format: FormatYAML, wantErr: "record 0 is a number"},
		{name: "trailing json", data: `{"a": 1} {"b": 2}`, format: FormatJSON, wantErr: "unexpected data"},
		{name: "broken json", data: `{"a": `, format: FormatJSON, wantErr: "invalid JSON"},
		{name: "broken yaml", data: "a: [1, 2", format: FormatYAML, wantErr: "invalid YAML"},
		{name: "empty yaml", data: "", format: FormatYAML, wantErr: "empty document"},
		{name: "yaml null document", data: "~\n", format: FormatYAML, wantErr: "empty document"},
		{name: "duplicate yaml key", data: "a: 1\na: 2\n", format: FormatYAML, wantErr: "already defined"},
		{name: "yaml anchors", data: "base: &b {x: 1}\nrec: *b\n", format: FormatYAML, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := ReadBytes([]byte(tt.data), tt.format, "test")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadBytes() failed: %v", err)
			}
			if subject.Len() != tt.wantLen || subject.Batch != tt.wantBatch {
				t.Errorf("Len() = %d, Batch = %v; want %d, %v", subject.Len(), subject.Batch, tt.wantLen, tt.wantBatch)
			}
		})
	}
}

func TestReadBytes_NestedNormalization(t *testing.T) {
	subject, err := ReadBytes([]byte("a:\n  1: x\n  list: [1, 2]\n"), FormatYAML, "nested")
	if err != nil {
		t.Fatalf("ReadBytes() failed: %v", err)
	}
	nested, ok := subject.Records[0]["a"].(map[string]any)
	if !ok {
		t.Fatalf("nested mapping decoded as %T", subject.Records[0]["a"])
	}
	if nested["1"] != "x" {
		t.Errorf("non-string key not normalized: %v", nested)
	}
	list := nested["list"].([]any)
	if list[0] != float64(1) {
		t.Errorf("list element decoded as %T", list[0])
	}
}

func TestReadBytes_MergeKeys(t *testing.T) {
	data := "- &base {currency: EUR, amount: 1}\n- <<: *base\n  amount: 2\n"
	subject, err := ReadBytes([]byte(data), FormatYAML, "merge")
	if err != nil {
		t.Fatalf("ReadBytes() failed: %v", err)
	}
	rec := subject.Records[1]
	if rec["currency"] != "EUR" || rec["amount"] != float64(2) {
		t.Errorf("merged record = %v, want currency from the anchor and its own amount", rec)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestFormatFromContentType(t *testing.T) {
	for ct, want := range map[string]Format{
		"application/json":              FormatJSON,
		"application/json; charset=utf": FormatJSON,
		"application/yaml":              FormatYAML,
		"text/x-yaml":                   FormatYAML,
		"text/plain":                    FormatAuto,
	} {
		if got := FormatFromContentType(ct); got != want {
			t.Errorf("FormatFromContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}
