package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"findatex-hq/regcheck/pkg/cli"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/report"
)

// execute runs the command tree with fresh flag values and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate_BuiltinTemplate(t *testing.T) {
	out, err := execute(t, "validate", "--template", "ept", "testdata/ept-minimal.yaml")
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "testdata/ept-minimal.yaml is valid") {
		t.Errorf("output = %q", out)
	}
}

func TestValidate_InvalidExitCode(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"amount": -5, "status": "Z"}`)

	out, err := execute(t, "validate", "--schema", "testdata/funds.yaml", "--format", "json", bad)
	var invalid *cli.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidError", err)
	}
	if cli.ExitCode(err) != cli.ExitInvalid {
		t.Errorf("exit code = %d", cli.ExitCode(err))
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rep.Valid || rep.ErrorCount != 3 {
		t.Errorf("report = %+v", rep)
	}
	if rep.Summary["MissingRequiredField"] != 1 || rep.Summary["EnumMismatch"] != 1 || rep.Summary["RangeViolation"] != 1 {
		t.Errorf("summary = %v", rep.Summary)
	}
}

func TestValidate_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "id: F1\namount: 3\n")
	batch := writeFile(t, dir, "batch.json", `[{"id":"a"},{"status":"C"}]`)

	out, err := execute(t, "validate", "--schema", "testdata/funds.yaml", "--format", "csv", good, batch)
	if cli.ExitCode(err) != cli.ExitInvalid {
		t.Fatalf("error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "source,record,field,kind,message,triggers,rule" {
		t.Errorf("header = %q", lines[0])
	}
	// Record 1 of the batch lacks id and has a bad status.
	if len(lines) != 3 {
		t.Fatalf("rows = %q", lines)
	}
	for _, row := range lines[1:] {
		if !strings.HasPrefix(row, batch+",1,") {
			t.Errorf("row = %q", row)
		}
	}
}

func TestValidate_StrictAndStdin(t *testing.T) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(`{"id": "x", "extra": true}`))
	rootCmd.SetArgs([]string{"validate", "--schema", "testdata/funds.yaml", "--strict", "-"})
	err := rootCmd.Execute()

	if cli.ExitCode(err) != cli.ExitInvalid {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(out.String(), "UnknownField") || !strings.Contains(out.String(), "<stdin>") {
		t.Errorf("output = %q", out.String())
	}
}

func TestValidate_OutputFile(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "d.json", `{"id":"a"}`)
	target := filepath.Join(dir, "report.xml")

	if _, err := execute(t, "validate", "--schema", "testdata/funds.yaml", "-f", "junit", "-o", target, data); err != nil {
		t.Fatalf("validate error = %v", err)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), `<testsuites tests="1" failures="0">`) {
		t.Errorf("junit output = %s", content)
	}
}

func TestValidate_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no catalog", []string{"validate", "testdata/ept-minimal.yaml"}, "--template or --schema"},
		{"unknown template", []string{"validate", "-t", "etp", "testdata/ept-minimal.yaml"}, "Did you mean"},
		{"bad format", []string{"validate", "-t", "ept", "-f", "xml", "testdata/ept-minimal.yaml"}, "unknown output format"},
		{"missing file", []string{"validate", "-t", "ept", "testdata/nope.json"}, "nope.json"},
		{"broken schema", []string{"validate", "--schema", "testdata/broken-schema.yaml", "testdata/ept-minimal.yaml"}, "nmber"},
		{"record without history", []string{"validate", "-t", "ept", "--record", "testdata/ept-minimal.yaml"}, "history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if cli.ExitCode(err) != cli.ExitError {
				t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitError)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSchemaLint(t *testing.T) {
	out, err := execute(t, "schema", "lint", "testdata/funds.yaml")
	if err != nil {
		t.Fatalf("lint error = %v", err)
	}
	if !strings.Contains(out, "funds (3 fields, 0 rules)") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "schema", "lint", "--format", "json", "testdata/broken-schema.yaml")
	if cli.ExitCode(err) != cli.ExitInvalid {
		t.Fatalf("error = %v", err)
	}
	var results []LintResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].Valid || len(results[0].Errors) == 0 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Errors[0].Line != 5 {
		t.Errorf("line = %d, want 5", results[0].Errors[0].Line)
	}
}

func TestSchemaLint_Builtins(t *testing.T) {
	out, err := execute(t, "schema", "lint")
	if err != nil {
		t.Fatalf("lint error = %v\n%s", err, out)
	}
	for _, want := range []string{"builtin:ept", "builtin:tpt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %q", want, out)
		}
	}
}

func TestSchemaFields(t *testing.T) {
	out, err := execute(t, "schema", "fields", "--schema", "testdata/funds.yaml", "--format", "json")
	if err != nil {
		t.Fatalf("fields error = %v", err)
	}
	var rows []FieldRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 || rows[1].Range != ">= 0" || len(rows[2].Values) != 2 {
		t.Errorf("rows = %+v", rows)
	}

	out, err = execute(t, "schema", "fields", "tpt")
	if err != nil {
		t.Fatalf("fields tpt error = %v", err)
	}
	if !strings.HasPrefix(out, "FIELD") {
		t.Errorf("text output = %q", out[:min(len(out), 80)])
	}
}

func TestSchemaList(t *testing.T) {
	out, err := execute(t, "schema", "list", "--format", "csv")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "ept,") || !strings.HasPrefix(lines[2], "tpt,") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryFlow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "regcheck.yaml", `
history:
  enabled: true
  backend: sqlite
  sqlite:
    path: `+filepath.Join(dir, "history.db")+`
    driver: sqlite
  retention:
    max_runs: 1
`)
	good := writeFile(t, dir, "good.json", `{"id":"a"}`)
	bad := writeFile(t, dir, "bad.json", `{}`)

	if _, err := execute(t, "-c", cfgPath, "validate", "--schema", "testdata/funds.yaml", "--record", good); err != nil {
		t.Fatalf("validate good error = %v", err)
	}
	if _, err := execute(t, "-c", cfgPath, "validate", "--schema", "testdata/funds.yaml", "--record", bad); cli.ExitCode(err) != cli.ExitInvalid {
		t.Fatalf("validate bad error = %v", err)
	}

	out, err := execute(t, "-c", cfgPath, "history", "list", "--format", "json")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(runs) != 2 || runs[0].Source != bad || runs[0].Template != "funds" {
		t.Fatalf("runs = %+v", runs)
	}

	out, err = execute(t, "-c", cfgPath, "history", "list", "--valid", "true")
	if err != nil || !strings.Contains(out, good) || strings.Contains(out, bad) {
		t.Errorf("filtered list = %q, %v", out, err)
	}

	out, err = execute(t, "-c", cfgPath, "history", "show", runs[0].ID)
	if err != nil {
		t.Fatalf("history show error = %v", err)
	}
	if !strings.Contains(out, "MissingRequiredField") {
		t.Errorf("show output = %q", out)
	}

	out, err = execute(t, "-c", cfgPath, "history", "prune")
	if err != nil {
		t.Fatalf("history prune error = %v", err)
	}
	if !strings.Contains(out, "pruned 1 run(s)") {
		t.Errorf("prune output = %q", out)
	}
}

func TestHistory_Disabled(t *testing.T) {
	_, err := execute(t, "history", "list")
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestServe_DryRun(t *testing.T) {
	out, err := execute(t, "serve", "--dry-run")
	if err != nil {
		t.Fatalf("serve --dry-run error = %v", err)
	}
	if !strings.Contains(out, "2 catalogs loaded") {
		t.Errorf("output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != Version || len(info.Templates) != 2 {
		t.Errorf("info = %+v", info)
	}
}
