package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/assessment"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run simulated examinees through the engine and report accuracy",
	Long: `simulate answers assessments with synthetic examinees of known ability
and reports estimation bias, RMSE, test length and level agreement.
Results are deterministic for a given --seed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, _ := cmd.Flags().GetInt("sessions")
		bankFile, _ := cmd.Flags().GetString("bank")
		bankSize, _ := cmd.Flags().GetInt("bank-size")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		seed, _ := cmd.Flags().GetUint64("seed")
		mean, _ := cmd.Flags().GetFloat64("theta-mean")
		sd, _ := cmd.Flags().GetFloat64("theta-sd")
		metricsOut, _ := cmd.Flags().GetString("metrics-out")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var qs []bank.Question
		if bankFile != "" {
			if qs, err = bank.LoadFile(bankFile); err != nil {
				return err
			}
		} else {
			qs = simulate.SyntheticBank(bankSize, []string{"prompting", "tooling", "ethics", "workflow"}, seed)
		}

		reg := prometheus.NewRegistry()
		metrics := assessment.NewMetrics(reg)

		report, err := simulate.Run(cmd.Context(), simulate.Options{
			Sessions:    sessions,
			Concurrency: concurrency,
			Config:      cfg,
			Bank:        bank.NewMemoryBank(qs),
			Seed:        seed,
			ThetaMean:   mean,
			ThetaSD:     sd,
			Observe: func(o simulate.Outcome) {
				metrics.SessionsStarted.Inc()
				metrics.ObserveCompleted(string(o.EndReason), o.StandardError, o.QuestionsAnswered)
			},
		})
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report, len(qs))

		if metricsOut != "" {
			if err := writeMetrics(metricsOut, reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nmetrics written to %s\n", metricsOut)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().Int("sessions", 200, "Number of simulated sessions")
	simulateCmd.Flags().String("bank", "", "Question bank JSON file (default: synthetic bank)")
	simulateCmd.Flags().Int("bank-size", 120, "Size of the synthetic bank")
	simulateCmd.Flags().Int("concurrency", 0, "Sessions run in parallel (0 = GOMAXPROCS)")
	simulateCmd.Flags().Uint64("seed", 1, "Seed for abilities, selection and answers")
	simulateCmd.Flags().Float64("theta-mean", 0, "Mean of the true ability distribution")
	simulateCmd.Flags().Float64("theta-sd", 1, "Standard deviation of the true ability distribution")
	simulateCmd.Flags().String("metrics-out", "", "Write Prometheus metrics in text format to this file")
}

func printReport(w io.Writer, r simulate.Report, bankSize int) {
	fmt.Fprintf(w, "%d sessions over %d questions\n", len(r.Outcomes), bankSize)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "%-24s %8.3f\n", "Bias", r.Bias)
	fmt.Fprintf(w, "%-24s %8.3f\n", "RMSE", r.RMSE)
	fmt.Fprintf(w, "%-24s %8.1f\n", "Mean length", r.MeanLength)
	fmt.Fprintf(w, "%-24s %8.3f\n", "Mean standard error", r.MeanStandardError)
	fmt.Fprintf(w, "%-24s %7.1f%%\n", "Level agreement", 100*r.LevelAgreement)

	fmt.Fprintln(w, "\nEnd reasons")
	reasons := make([]session.EndReason, 0, len(r.Reasons))
	for reason := range r.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %-22s %8d\n", reason, r.Reasons[reason])
	}

	if len(r.MeanStandardErrors) > 0 {
		fmt.Fprintln(w, "\nStandard error by question")
		for i, se := range r.MeanStandardErrors {
			if i%5 == 4 || i == 0 || i == len(r.MeanStandardErrors)-1 {
				fmt.Fprintf(w, "  %-22d %8.3f\n", i+1, se)
			}
		}
	}
}
