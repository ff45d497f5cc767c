package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/app"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/assessment"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/guard"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/home"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take an adaptive assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		bankFile, _ := cmd.Flags().GetString("bank")
		metricsOut, _ := cmd.Flags().GetString("metrics-out")
		return runApp(cmd, bankFile, metricsOut)
	},
}

func init() {
	takeCmd.Flags().String("bank", "", "Question bank JSON file (default: questions imported into the database)")
	takeCmd.Flags().String("metrics-out", "", "Write Prometheus metrics in text format to this file on exit")
}

// runApp opens the store, builds the assessment service and launches the
// TUI. Without bankFile, questions come from the database. Service metrics
// are collected on a private registry and written to metricsOut, if set,
// when the TUI exits; spans go to the exporter named by
// AIBORG_TRACES_EXPORTER.
func runApp(cmd *cobra.Command, bankFile, metricsOut string) (err error) {
	ctx := cmd.Context()

	dsn, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	log, err := newLogger(cmd, logFilePath(dsn))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	shutdownTracing, err := initTracing(cmd, traceFilePath(dsn))
	if err != nil {
		return err
	}
	defer shutdownTracing()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.OpenContext(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	b, size, err := selectBank(ctx, st, bankFile)
	if err != nil {
		return err
	}

	g, closeGuard, err := newGuard(ctx, log)
	if err != nil {
		return err
	}
	defer closeGuard()

	reg := prometheus.NewRegistry()
	if metricsOut != "" {
		defer func() {
			if werr := writeMetrics(metricsOut, reg); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	svc, err := assessment.New(cfg, assessment.Deps{
		Bank:      b,
		Snapshots: st.SnapshotRepo(),
		Results:   st.ResultRepo(),
		Events:    st.EventRepo(),
		Guard:     g,
		Metrics:   assessment.NewMetrics(reg),
		Logger:    log,
	})
	if err != nil {
		return err
	}

	log.Info("starting assessment tui", "bank_size", size, "dialect", st.Dialect())
	return app.Run(ctx, home.Options{
		Engine:    svc,
		Snapshots: st.SnapshotRepo(),
		Results:   st.ResultRepo(),
		BankSize:  size,
	})
}

// selectBank loads bankFile into memory, or falls back to the database
// bank when bankFile is empty.
func selectBank(ctx context.Context, st *store.Store, bankFile string) (bank.Bank, int, error) {
	if bankFile != "" {
		qs, err := bank.LoadFile(bankFile)
		if err != nil {
			return nil, 0, err
		}
		return bank.NewMemoryBank(qs), len(qs), nil
	}

	counts, err := st.QuestionRepo().CountByCategory(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}
	size := 0
	for _, n := range counts {
		size += n
	}
	if size == 0 {
		return nil, 0, fmt.Errorf("no questions in the database: run 'aiborg-assess bank import <file>' or pass --bank")
	}
	return st.Bank(), size, nil
}

// newGuard uses Redis when AIBORG_REDIS_ADDR is set, otherwise an
// in-process guard.
func newGuard(ctx context.Context, log *logger.Logger) (guard.Guard, func(), error) {
	opts := guard.RedisOptionsFromEnv()
	if opts.Addr == "" {
		return guard.NewLocal(), func() {}, nil
	}
	r, err := guard.NewRedis(ctx, log, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis guard: %w", err)
	}
	return r, func() { _ = r.Close() }, nil
}
