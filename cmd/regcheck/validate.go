package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/cli"
	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/reader"
	"findatex-hq/regcheck/pkg/registry"
	"findatex-hq/regcheck/pkg/report"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/templates"
	"findatex-hq/regcheck/pkg/validation"
)

var validateFlags struct {
	template    string
	schema      string
	format      string
	output      string
	inputFormat string
	strict      bool
	workers     int
	progress    bool
	record      bool
}

var validateCmd = &cobra.Command{
	Use:   "validate [flags] FILE...",
	Short: "Validate data files against a template catalog",
	Long: `Validate one or more JSON or YAML data files against a template catalog.

A file holding a mapping is validated as one record; a file holding a list
of mappings is validated as a batch and errors carry the record index.
Use "-" to read from standard input.

Examples:
  # Validate an EPT file
  regcheck validate --template ept fund.json

  # Report undeclared fields too
  regcheck validate -t ept --strict fund.yaml

  # Validate against a custom schema definition
  regcheck validate --schema schemas/house-ept.yaml fund.json

  # JUnit XML for CI
  regcheck validate -t tpt --format junit -o tpt.xml positions/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.template, "template", "t", "", "template catalog name (ept, tpt or a configured custom catalog)")
	validateCmd.Flags().StringVar(&validateFlags.schema, "schema", "", "schema definition file to validate against instead of --template")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json, csv, junit")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "", "write the report to a file instead of stdout")
	validateCmd.Flags().StringVar(&validateFlags.inputFormat, "input-format", "auto", "input format: json, yaml, auto")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "report fields not declared in the catalog (overrides validation.strict)")
	validateCmd.Flags().IntVar(&validateFlags.workers, "workers", 0, "parallel workers for batch files (overrides validation.workers)")
	validateCmd.Flags().BoolVar(&validateFlags.progress, "progress", false, "show a progress bar on stderr")
	validateCmd.Flags().BoolVar(&validateFlags.record, "record", false, "save each run to the history store")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}
	inputFormat, err := reader.ParseFormat(validateFlags.inputFormat)
	if err != nil {
		return cli.NewConfigError("input-format", err.Error())
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	name, cat, err := catalogFor(cfg, logger, validateFlags.template, validateFlags.schema)
	if err != nil {
		return err
	}

	strict := cfg.Validation.Strict
	if cmd.Flags().Changed("strict") {
		strict = validateFlags.strict
	}
	workers := cfg.Validation.Workers
	if cmd.Flags().Changed("workers") {
		workers = validateFlags.workers
	}

	var recorder *history.Recorder
	if validateFlags.record {
		if !cfg.History.Enabled {
			return cli.NewConfigError("history.enabled", "--record needs the history store enabled")
		}
		store, err := history.Open(cfg.History, logger)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		defer store.Close()
		recorder = history.NewRecorder(store, logger, nil)
	}

	out := cmd.OutOrStdout()
	if validateFlags.output != "" {
		f, err := os.Create(validateFlags.output)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		defer f.Close()
		out = f
	}

	progress := cli.NewProgressReporter(nil)
	if validateFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
	}

	v := validation.NewValidator(cat, validation.WithStrict(strict), validation.WithWorkers(workers))
	reports := make(report.Set, 0, len(args))

	progress.Start(len(args))
	for _, path := range args {
		subject, err := readInput(cmd, path, inputFormat)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}

		started := time.Now()
		res := v.Validate(subject)
		rep := report.New(cat, res, sourceName(path))
		logger.Debug("document validated",
			"source", rep.Source,
			"template", name,
			"valid", rep.Valid,
			"records", rep.Records,
			"errors", rep.ErrorCount,
			"duration", time.Since(started),
		)
		if _, err := recorder.Record(cmd.Context(), name, rep, strict, started); err != nil {
			return cli.NewCommandError("validate", err)
		}

		reports = append(reports, rep)
		progress.Done(path, rep.Valid)
	}
	progress.Finish()

	var data any = reports
	if len(reports) == 1 {
		data = reports[0]
	}
	if err := cli.NewFormatter(format).FormatTo(out, data); err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to write report: %w", err))
	}

	if !reports.Valid() {
		return &cli.InvalidError{Documents: len(reports), Invalid: reports.InvalidCount()}
	}
	return nil
}

// catalogFor resolves the catalog to validate against: a schema file when
// schemaPath is set, else the named template from the configured registry.
func catalogFor(cfg *config.Config, logger *logging.Logger, template, schemaPath string) (string, *catalog.Catalog, error) {
	if schemaPath != "" {
		cat, err := catalog.Load(schemaPath)
		if err != nil {
			return "", nil, cli.NewCommandError("schema", err)
		}
		return templates.Key(cat.Name()), cat, nil
	}
	if template == "" {
		return "", nil, cli.NewConfigError("template", "one of --template or --schema is required")
	}

	mgr := registry.NewManager(cfg.Schemas, registry.WithLogger(logger))
	if err := mgr.Load(); err != nil {
		return "", nil, cli.NewCommandError("schema", err)
	}
	entry, err := mgr.Registry().Entry(template)
	if err != nil {
		return "", nil, cli.NewConfigError("template", err.Error())
	}
	return entry.Name, entry.Catalog, nil
}

func readInput(cmd *cobra.Command, path string, format reader.Format) (validation.Subject, error) {
	if path == "-" {
		return reader.Read(cmd.InOrStdin(), format, sourceName(path))
	}
	if format == reader.FormatAuto {
		return reader.ReadFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return validation.Subject{}, &reader.Error{Source: path, Err: err}
	}
	defer f.Close()
	return reader.Read(f, format, path)
}

func sourceName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}
