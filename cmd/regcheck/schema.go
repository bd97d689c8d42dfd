package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/cli"
	"findatex-hq/regcheck/pkg/registry"
	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
	"findatex-hq/regcheck/pkg/templates"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect and check schema definitions",
	Long: `Inspect the registered template catalogs and check schema definition files.

Examples:
  # Check custom schema definitions
  regcheck schema lint schemas/

  # List the fields of the TPT catalog
  regcheck schema fields tpt

  # List registered catalogs
  regcheck schema list`,
}

var schemaFlags struct {
	format string
	schema string
}

var schemaLintCmd = &cobra.Command{
	Use:   "lint [FILE|DIR...]",
	Short: "Check schema definition files",
	Long: `Parse and compile schema definition files, reporting every problem with
its location and a suggestion where one is known.

Without arguments the built-in catalogs and the configured schema paths are
checked.`,
	RunE: runSchemaLint,
}

var schemaFieldsCmd = &cobra.Command{
	Use:   "fields [TEMPLATE]",
	Short: "List the fields of a catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchemaFields,
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered catalogs",
	Args:  cobra.NoArgs,
	RunE:  runSchemaList,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaLintCmd, schemaFieldsCmd, schemaListCmd)

	schemaCmd.PersistentFlags().StringVarP(&schemaFlags.format, "format", "f", "text", "output format: text, json, csv")
	schemaFieldsCmd.Flags().StringVar(&schemaFlags.schema, "schema", "", "schema definition file instead of a registered template")
}

// LintResult is the outcome of checking one schema source.
type LintResult struct {
	Source string      `json:"source"`
	Valid  bool        `json:"valid"`
	Name   string      `json:"name,omitempty"`
	Fields int         `json:"fields,omitempty"`
	Rules  int         `json:"rules,omitempty"`
	Errors []LintIssue `json:"errors,omitempty"`
}

// LintIssue is one located schema problem.
type LintIssue struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func runSchemaLint(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(schemaFlags.format)
	if err != nil {
		return err
	}

	var results []LintResult
	if len(args) == 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		for _, name := range templates.Names() {
			cat, err := templates.Load(name)
			results = append(results, lintResult("builtin:"+name, cat, err))
		}
		args = cfg.Schemas.Paths
	}

	files, loadErrs := registry.NewLoader(false, args).Files()
	for _, le := range loadErrs {
		results = append(results, lintResult(le.Source, nil, le.Err))
	}
	for _, file := range files {
		cat, err := catalog.Load(file)
		results = append(results, lintResult(file, cat, err))
	}
	if len(results) == 0 {
		return cli.NewConfigError("schema lint", "no schema files found")
	}

	if err := writeLint(cmd, format, results); err != nil {
		return err
	}

	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return &cli.InvalidError{Documents: len(results), Invalid: invalid}
	}
	return nil
}

func lintResult(source string, cat *catalog.Catalog, err error) LintResult {
	if err == nil {
		return LintResult{
			Source: source,
			Valid:  true,
			Name:   cat.Name(),
			Fields: cat.Len(),
			Rules:  len(cat.Rules()),
		}
	}

	result := LintResult{Source: source}
	var list *schemaErrors.ErrorList
	var single *schemaErrors.Error
	switch {
	case errors.As(err, &list):
		for _, e := range list.Errors {
			result.Errors = append(result.Errors, lintIssue(e))
		}
	case errors.As(err, &single):
		result.Errors = append(result.Errors, lintIssue(single))
	default:
		result.Errors = append(result.Errors, LintIssue{Type: string(schemaErrors.ErrorTypeIO), Message: err.Error()})
	}
	return result
}

func lintIssue(e *schemaErrors.Error) LintIssue {
	return LintIssue{
		Type:       string(e.Type),
		Message:    e.Message,
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Suggestion: e.Suggestion,
	}
}

func writeLint(cmd *cobra.Command, format cli.OutputFormat, results []LintResult) error {
	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(out, results)
	case cli.FormatCSV:
		var rows [][]string
		for _, r := range results {
			for _, e := range r.Errors {
				rows = append(rows, []string{r.Source, strconv.Itoa(e.Line), strconv.Itoa(e.Column), e.Type, e.Message, e.Suggestion})
			}
		}
		f := &cli.CSVFormatter{Headers: []string{"source", "line", "column", "type", "message", "suggestion"}}
		return f.FormatTo(out, rows)
	case cli.FormatJUnit:
		return cli.NewConfigError("format", "junit output is not supported by schema lint")
	}

	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(out, "✓ %s: %s (%d fields, %d rules)\n", r.Source, r.Name, r.Fields, r.Rules)
			continue
		}
		fmt.Fprintf(out, "✗ %s: %d problem(s)\n", r.Source, len(r.Errors))
		for _, e := range r.Errors {
			loc := ""
			if e.Line > 0 {
				loc = fmt.Sprintf("%d:%d: ", e.Line, e.Column)
			}
			fmt.Fprintf(out, "  %s[%s] %s\n", loc, e.Type, e.Message)
			if e.Suggestion != "" {
				fmt.Fprintf(out, "    suggestion: %s\n", e.Suggestion)
			}
		}
	}
	return nil
}

// FieldRow is one field in `schema fields` output.
type FieldRow struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Values   []string `json:"values,omitempty"`
	Range    string   `json:"range,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Rules    []string `json:"rules,omitempty"`
}

func runSchemaFields(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(schemaFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	template := ""
	if len(args) == 1 {
		template = args[0]
	}
	_, cat, err := catalogFor(cfg, logger, template, schemaFlags.schema)
	if err != nil {
		return err
	}

	rows := make([]FieldRow, 0, cat.Len())
	for _, f := range cat.Fields() {
		rows = append(rows, fieldRow(f))
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(out, rows)
	case cli.FormatCSV:
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{r.ID, r.Type, strconv.FormatBool(r.Required),
				strings.Join(r.Values, "|"), r.Range, r.Pattern, strings.Join(r.Rules, "|")})
		}
		f := &cli.CSVFormatter{Headers: []string{"id", "type", "required", "values", "range", "pattern", "rules"}}
		return f.FormatTo(out, records)
	case cli.FormatJUnit:
		return cli.NewConfigError("format", "junit output is not supported by schema fields")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tREQUIRED\tCONSTRAINTS")
	for _, r := range rows {
		var constraints []string
		if len(r.Values) > 0 {
			constraints = append(constraints, "{"+strings.Join(r.Values, ", ")+"}")
		}
		if r.Range != "" {
			constraints = append(constraints, r.Range)
		}
		if r.Pattern != "" {
			constraints = append(constraints, "/"+r.Pattern+"/")
		}
		if len(r.Rules) > 0 {
			constraints = append(constraints, fmt.Sprintf("%d rule(s)", len(r.Rules)))
		}
		required := ""
		if r.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Type, required, strings.Join(constraints, " "))
	}
	return tw.Flush()
}

func fieldRow(f *catalog.FieldDefinition) FieldRow {
	row := FieldRow{ID: f.ID, Type: string(f.Kind), Required: f.Required}
	for _, v := range f.Enum {
		row.Values = append(row.Values, fmt.Sprint(v))
	}
	switch {
	case f.Min != nil && f.Max != nil:
		row.Range = fmt.Sprintf("[%g, %g]", *f.Min, *f.Max)
	case f.Min != nil:
		row.Range = fmt.Sprintf(">= %g", *f.Min)
	case f.Max != nil:
		row.Range = fmt.Sprintf("<= %g", *f.Max)
	}
	if f.Pattern != nil {
		row.Pattern = f.Pattern.String()
	}
	for _, r := range f.Rules {
		row.Rules = append(row.Rules, r.Name)
	}
	return row
}

func runSchemaList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(schemaFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	mgr := registry.NewManager(cfg.Schemas, registry.WithLogger(logger))
	if err := mgr.Load(); err != nil {
		return cli.NewCommandError("schema list", err)
	}

	type listRow struct {
		Name    string `json:"name"`
		Catalog string `json:"catalog"`
		Version string `json:"template_version"`
		Fields  int    `json:"fields"`
		Source  string `json:"source"`
	}
	var rows []listRow
	for _, e := range mgr.Registry().Entries() {
		rows = append(rows, listRow{
			Name:    e.Name,
			Catalog: e.Catalog.Name(),
			Version: e.Catalog.TemplateVersion(),
			Fields:  e.Catalog.Len(),
			Source:  e.Source,
		})
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(out, rows)
	case cli.FormatCSV:
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{r.Name, r.Catalog, r.Version, strconv.Itoa(r.Fields), r.Source})
		}
		f := &cli.CSVFormatter{Headers: []string{"name", "catalog", "template_version", "fields", "source"}}
		return f.FormatTo(out, records)
	case cli.FormatJUnit:
		return cli.NewConfigError("format", "junit output is not supported by schema list")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATALOG\tVERSION\tFIELDS\tSOURCE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Name, r.Catalog, r.Version, r.Fields, r.Source)
	}
	return tw.Flush()
}
