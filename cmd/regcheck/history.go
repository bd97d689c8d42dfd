package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"findatex-hq/regcheck/pkg/cli"
	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/telemetry/logging"
)

var historyFlags struct {
	format   string
	template string
	valid    string
	since    time.Duration
	limit    int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query and prune stored validation runs",
	Long: `Query and prune the validation run history.

Runs are stored by "regcheck serve" and by "regcheck validate --record" when
history.enabled is set.

Examples:
  # Last 20 runs
  regcheck history list --limit 20

  # Invalid TPT runs of the last day
  regcheck history list --template tpt --valid false --since 24h

  # Re-render a stored report as JUnit
  regcheck history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --format junit

  # Apply the retention policy now
  regcheck history prune`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Print the report of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs beyond the retention policy",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyCmd.PersistentFlags().StringVarP(&historyFlags.format, "format", "f", "text", "output format: text, json, csv (show also: junit)")
	historyListCmd.Flags().StringVarP(&historyFlags.template, "template", "t", "", "only runs of this template")
	historyListCmd.Flags().StringVar(&historyFlags.valid, "valid", "", "only valid (true) or invalid (false) runs")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "maximum runs to list (0 for all)")
}

func openHistory(cmd *cobra.Command) (*config.Config, *logging.Logger, history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, nil, cli.NewConfigError("history.enabled", "the history store is disabled")
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := history.Open(cfg.History, logger)
	if err != nil {
		return nil, nil, nil, cli.NewCommandError(cmd.Name(), err)
	}
	return cfg, logger, store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.format)
	if err != nil {
		return err
	}
	q := &history.Query{Template: historyFlags.template, Limit: historyFlags.limit}
	if historyFlags.valid != "" {
		v, err := strconv.ParseBool(historyFlags.valid)
		if err != nil {
			return cli.NewConfigError("valid", fmt.Sprintf("invalid boolean %q", historyFlags.valid))
		}
		q.Valid = &v
	}
	if historyFlags.since > 0 {
		since := time.Now().Add(-historyFlags.since)
		q.Since = &since
	}

	_, _, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		if runs == nil {
			runs = []*history.Run{}
		}
		return cli.NewFormatter(format).FormatTo(out, runs)
	case cli.FormatCSV:
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{r.ID, r.StartedAt.Format(time.RFC3339), r.Template, r.Source,
				strconv.FormatBool(r.Valid), strconv.Itoa(r.Records), strconv.Itoa(r.ErrorCount)})
		}
		f := &cli.CSVFormatter{Headers: []string{"id", "started_at", "template", "source", "valid", "records", "errors"}}
		return f.FormatTo(out, rows)
	case cli.FormatJUnit:
		return cli.NewConfigError("format", "junit output is not supported by history list")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tTEMPLATE\tSOURCE\tRESULT\tRECORDS\tERRORS")
	for _, r := range runs {
		result := "valid"
		if !r.Valid {
			result = "invalid"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Template, r.Source, result, r.Records, r.ErrorCount)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.format)
	if err != nil {
		return err
	}
	_, _, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	rep, err := run.DecodeReport()
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), rep)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := history.NewPruner(store, cfg.History.Retention, logger, nil).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d run(s)\n", deleted)
	return nil
}
