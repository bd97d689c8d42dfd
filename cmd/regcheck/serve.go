package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"findatex-hq/regcheck/pkg/cli"
	"findatex-hq/regcheck/pkg/history"
	"findatex-hq/regcheck/pkg/registry"
	"findatex-hq/regcheck/pkg/server"
	"findatex-hq/regcheck/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP server",
	Long: `Start the validation HTTP server.

The server loads the built-in and configured catalogs, watches schema paths
for changes when schemas.watch is set, and serves:

  POST /v1/validate/{template}   GET /v1/templates[/{template}]
  GET  /v1/runs[/{id}]           GET /health, /ready, /version, /metrics

Examples:
  # Start with defaults (127.0.0.1:8420, built-in catalogs)
  regcheck serve

  # Start with a config file and a different address
  regcheck serve --config /etc/regcheck/config.yaml --listen 0.0.0.0:8080

  # Check config and catalogs without starting
  regcheck serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "load config and catalogs, then exit")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	mgr := registry.NewManager(cfg.Schemas, registry.WithLogger(logger), registry.WithMetrics(collector))
	if err := mgr.Load(); err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to load catalogs: %w", err))
	}
	if serveFlags.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "configuration valid; %d catalogs loaded: %v\n",
			mgr.Registry().Len(), mgr.Registry().Names())
		return nil
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithVersion(server.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		opts = append(opts, server.WithHistory(store))

		pruner := history.NewPruner(store, cfg.History.Retention, logger, collector)
		scheduler := history.NewScheduler(pruner, cfg.History.Retention.Schedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
	}

	if cfg.Schemas.Watch {
		go func() {
			if err := mgr.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("schema watcher stopped", "error", err)
			}
		}()
	}

	srv := server.New(cfg, mgr.Registry(), opts...)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}
