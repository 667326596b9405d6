package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/audit/retention"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/gate"
	"mercator-hq/callisto/pkg/killswitch"
	"mercator-hq/callisto/pkg/server"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the reference host with the admin endpoint",
	Long: `Start the reference host: build the enforcement gate from configuration,
wire the audit recorder and Prometheus metrics, and serve the admin HTTP
endpoint (status, reset, metrics, health).

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override the admin listen address
  callisto run --listen 0.0.0.0:9750`,
	RunE: runHost,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runHost(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Admin.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	setupLogging(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gateCfg := cfg.ToGateConfig()

	// Metrics sink.
	var sink *metrics.Sink
	if cfg.Metrics.Enabled {
		sink = metrics.NewSink(cfg.Metrics.Namespace, nil)
		gateCfg.Metrics = sink
	}

	// Kill switch: event-driven variant only when explicitly configured.
	if cfg.KillSwitch.Watch {
		watched, err := killswitch.NewWatched(cfg.KillSwitch.Path, nil)
		if err != nil {
			return fmt.Errorf("start kill switch watcher: %w", err)
		}
		defer watched.Close()
		gateCfg.KillSwitch = watched
	}

	// Audit trail.
	if cfg.Audit.Enabled {
		var storage audit.Storage
		if cfg.Audit.DBPath != "" {
			sqliteCfg := audit.DefaultSQLiteConfig()
			sqliteCfg.Path = cfg.Audit.DBPath
			storage, err = audit.NewSQLiteStorage(sqliteCfg)
			if err != nil {
				return fmt.Errorf("open audit storage: %w", err)
			}
		} else {
			storage = audit.NewMemoryStorage(0)
		}
		defer storage.Close()

		recorder := audit.NewRecorder(storage, &audit.RecorderConfig{Buffer: cfg.Audit.Buffer})
		defer recorder.Close()
		gateCfg.Audit = recorder

		pruner := retention.NewPruner(storage, retention.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			MaxRecords:    cfg.Audit.MaxRecords,
			PruneSchedule: cfg.Audit.PruneSchedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start retention scheduler: %w", err)
		}
	}

	g, err := gate.New(gateCfg)
	if err != nil {
		return fmt.Errorf("build gate: %w", err)
	}

	var metricsHandler http.Handler
	if sink != nil {
		metricsHandler = sink.Handler()
	}
	srv := server.New(g, cfg.Admin.ListenAddress, metricsHandler)

	slog.Info("callisto host starting",
		"lanes", len(cfg.Lanes),
		"monitor_lane", cfg.MonitorLane,
		"admin", cfg.Admin.ListenAddress,
	)

	return srv.Start(ctx)
}

// setupLogging configures the process-wide slog default.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
