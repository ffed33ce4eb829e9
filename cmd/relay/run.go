package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/cli"
	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/ledger"
	"datacrunch-hq/relay/pkg/prompts"
	"datacrunch-hq/relay/pkg/providerfactory"
	"datacrunch-hq/relay/pkg/quota"
	"datacrunch-hq/relay/pkg/server"
	"datacrunch-hq/relay/pkg/telemetry/health"
	"datacrunch-hq/relay/pkg/telemetry/logging"
	"datacrunch-hq/relay/pkg/telemetry/metrics"
	"datacrunch-hq/relay/pkg/telemetry/tracing"
	"datacrunch-hq/relay/pkg/watch"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay HTTP server with the specified configuration.

The server listens on the configured address and dispatches requests to the
configured providers. It shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Start with defaults and credentials from the environment
  relay run

  # Start with a config file
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8080

  # Validate config without starting server
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logger, err := logging.NewFromConfig(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	printBanner(cmd, cfg)

	var collector *metrics.Collector
	trackerOpts := []quota.Option{
		quota.WithDefaultDuration(cfg.Quota.BlockDuration),
		quota.WithLogger(logger),
	}
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		trackerOpts = append(trackerOpts, quota.WithObserver(collector))
	}
	tracker := quota.NewTracker(trackerOpts...)

	models, err := catalogue.NewWithOverlay(cfg.Catalogue.OverlayPath)
	if err != nil {
		return cli.NewConfigError("catalogue.overlay_path", err.Error())
	}
	templates, err := prompts.NewStoreFromFile(cfg.Prompts.Path)
	if err != nil {
		return cli.NewConfigError("prompts.path", err.Error())
	}
	if cfg.Catalogue.Watch {
		startWatcher(ctx, logger, cfg.Catalogue.OverlayPath, models.Reload)
	}
	if cfg.Prompts.Watch {
		startWatcher(ctx, logger, cfg.Prompts.Path, templates.Reload)
	}
	fmt.Fprintf(out, "✓ Catalogue loaded (%d models, %d templates)\n", len(models.All()), len(templates.List()))

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()
	if tracer.Enabled() {
		fmt.Fprintf(out, "✓ Tracing enabled (%s, sampler %s)\n", cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.Sampler)
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithCatalogue(models),
		dispatch.WithTracer(tracer),
		dispatch.WithBlockDuration(cfg.Quota.BlockDuration),
		dispatch.WithLogger(logger),
	}
	if collector != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithObserver(collector))
	}

	checker := health.New(0)
	deps := server.Dependencies{
		Health:    checker,
		Catalogue: models,
		Templates: templates,
		Metrics:   collector,
		Tracer:    tracer,
		Version:   Version,
	}

	if cfg.Ledger.Enabled {
		storage, err := openLedger(&cfg.Ledger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer storage.Close()

		recorder := ledger.NewRecorder(storage, &ledger.RecorderConfig{BufferSize: cfg.Ledger.BufferSize})
		defer func() {
			if err := recorder.Close(); err != nil {
				slog.Error("failed to flush usage ledger", "error", err)
			}
		}()
		dispatchOpts = append(dispatchOpts, dispatch.WithObserver(recorder))

		scheduler := ledger.NewScheduler(ledger.NewPruner(storage, cfg.Ledger.Retention.Days), cfg.Ledger.Retention.Schedule)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}

		deps.Usage = storage
		checker.Register("ledger", storage.Ping)
		fmt.Fprintf(out, "✓ Usage ledger opened (%s, %s)\n", storage.Driver(), cfg.Ledger.Path)
	}

	registry := providerfactory.NewDefaultRegistry(&cfg.Providers, tracker, cfg.Quota.BlockDuration)
	orchestrator := dispatch.New(registry, tracker, dispatchOpts...)
	checker.Register("providers", orchestrator.CheckAvailable)
	deps.Dispatcher = orchestrator
	fmt.Fprintf(out, "✓ Providers registered (%s)\n", describeProviders(cfg))

	srv := server.NewServer(&cfg.Server, cfg.Telemetry.Metrics.Path, deps)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoints: http://%s/health, /ready\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func openLedger(cfg *config.LedgerConfig) (*ledger.SQLiteStorage, error) {
	return ledger.OpenSQLite(&ledger.SQLiteConfig{
		Driver:      cfg.Driver,
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
	})
}

// startWatcher reloads a file in the background until ctx is done.
func startWatcher(ctx context.Context, logger *slog.Logger, path string, reload func() error) {
	if path == "" {
		return
	}
	fw, err := watch.NewFileWatcher(path, 0, logger)
	if err != nil {
		logger.Warn("file watching disabled", "path", path, "error", err)
		return
	}
	go func() {
		if err := fw.Watch(ctx, reload); err != nil {
			logger.Warn("file watcher stopped", "path", path, "error", err)
		}
	}()
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Relay v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintln(out, "✓ Configuration loaded")

	slog.Debug("configuration",
		"listen_address", cfg.Server.ListenAddress,
		"block_duration", cfg.Quota.BlockDuration,
		"ledger", cfg.Ledger.Enabled,
		"metrics", cfg.Telemetry.Metrics.Enabled,
	)
}
