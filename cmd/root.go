package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:          "aiborg-assess",
	Short:        "Adaptive AI augmentation assessment",
	Long:         "aiborg-assess runs computerized adaptive assessments of AI augmentation skills in the terminal.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", "")
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// DSN (overrides AIBORG_CAT_DB)")
	rootCmd.PersistentFlags().String("config", "", "YAML or JSON engine config file")
	rootCmd.PersistentFlags().String("log-mode", "dev", "Log mode: dev, prod or off")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the --db flag if set, then AIBORG_CAT_DB, then the
// default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if !store.IsPostgresDSN(p) {
			return p, store.EnsureDir(p)
		}
		return p, nil
	}
	return store.DefaultDBPath()
}

// openStore opens the store named by the flags.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dsn, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.OpenContext(cmd.Context(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// loadConfig reads --config with AIBORG_CAT_* overrides.
func loadConfig(cmd *cobra.Command) (session.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return session.LoadConfig(path)
}

// newLogger builds the logger from --log-mode and --log-level. A non-empty
// file sends output there instead of stderr.
func newLogger(cmd *cobra.Command, file string) (*logger.Logger, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewWithOptions(logger.Options{Mode: mode, Level: level, OutputPath: file})
}

// logFilePath puts the TUI log next to a SQLite database, or in the temp
// dir for Postgres.
func logFilePath(dsn string) string {
	if store.IsPostgresDSN(dsn) {
		return filepath.Join(os.TempDir(), "aiborg-assess.log")
	}
	return filepath.Join(filepath.Dir(dsn), "aiborg-assess.log")
}

// traceFilePath is where the stdout trace exporter writes while the TUI
// owns the terminal.
func traceFilePath(dsn string) string {
	return filepath.Join(filepath.Dir(logFilePath(dsn)), "aiborg-assess-traces.jsonl")
}

// initTracing installs the tracer provider from the environment. Stdout
// traces are appended to file. The returned func flushes and closes.
func initTracing(cmd *cobra.Command, file string) (func(), error) {
	cfg := telemetry.ConfigFromEnv()
	cfg.ServiceVersion = buildVersion()

	var f *os.File
	if cfg.Exporter == telemetry.ExporterStdout {
		var err error
		f, err = os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		cfg.Writer = f
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return func() {
		_ = shutdown(context.WithoutCancel(cmd.Context()))
		if f != nil {
			f.Close()
		}
	}, nil
}

// writeMetrics dumps every collector in reg to path in the Prometheus text
// format.
func writeMetrics(path string, reg *prometheus.Registry) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
