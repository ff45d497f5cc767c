package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored assessment sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		switch session.Status(status) {
		case "", session.StatusActive, session.StatusEnded:
		default:
			return fmt.Errorf("unknown status %q (use active or ended)", status)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		infos, err := st.SnapshotRepo().List(cmd.Context(), session.Status(status), limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-36s  %-7s  %-20s  %3s  %6s  %5s  %s\n",
			"ID", "Status", "Reason", "Q", "θ", "SE", "Updated")
		fmt.Fprintln(w, strings.Repeat("─", 108))
		for _, info := range infos {
			fmt.Fprintf(w, "%-36s  %-7s  %-20s  %3d  %6.2f  %5.2f  %s\n",
				info.SessionID, info.Status, info.EndReason, info.QuestionsAnswered,
				info.Theta, info.StandardError, info.UpdatedAt.Local().Format(time.DateTime))
		}
		fmt.Fprintf(w, "\n%d sessions\n", len(infos))
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's state, answers and result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap, err := st.SnapshotRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if snap == nil {
			return fmt.Errorf("session %q not found", id)
		}
		answers, err := st.EventRepo().AnswerEvents(ctx, id, store.QueryOpts{})
		if err != nil {
			return err
		}
		rec, err := st.ResultRepo().GetResult(ctx, id)
		if err != nil {
			return err
		}

		printSession(cmd.OutOrStdout(), snap, answers, rec)
		return nil
	},
}

var sessionPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete ended sessions older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.SnapshotRepo().Prune(cmd.Context(), time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d sessions\n", n)
		return nil
	},
}

func init() {
	sessionListCmd.Flags().String("status", "", "Filter by status: active or ended")
	sessionListCmd.Flags().Int("limit", 20, "Maximum sessions to list (0 = all)")
	sessionPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Prune ended sessions last updated before now minus this duration")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionPruneCmd)
}

func printSession(w io.Writer, snap *session.Snapshot, answers []store.AnswerEvent, rec *store.ResultRecord) {
	fmt.Fprintf(w, "Session   %s\n", snap.SessionID)
	fmt.Fprintf(w, "Status    %s", snap.Status)
	if snap.EndReason != "" {
		fmt.Fprintf(w, " (%s)", snap.EndReason)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Ability   %.3f ± %.3f after %d questions\n",
		snap.Theta, snap.StandardError, snap.QuestionsAnswered)

	if len(answers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%3s  %-16s  %-20s  %-7s  %7s  %7s  %5s\n",
			"#", "Question", "Category", "Correct", "θ before", "θ after", "SE")
		fmt.Fprintln(w, strings.Repeat("─", 80))
		for i, a := range answers {
			fmt.Fprintf(w, "%3d  %-16s  %-20s  %-7t  %7.2f  %7.2f  %5.2f\n",
				i+1, a.QuestionID, a.Category, a.Correct, a.ThetaBefore, a.ThetaAfter, a.StandardError)
		}
	}

	if rec != nil {
		r := rec.Result
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Level       %s\n", r.AugmentationLevel)
		fmt.Fprintf(w, "Score       %.1f / 100\n", r.ScaledScore)
		fmt.Fprintf(w, "Confidence  %.0f%%\n", r.ConfidencePercentage)
		fmt.Fprintf(w, "Completed   %s\n", rec.CompletedAt.Local().Format(time.DateTime))
	}
}
