package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the question bank",
}

var bankImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a question bank file and import it into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qs, err := bank.LoadFile(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.QuestionRepo().ImportQuestions(cmd.Context(), qs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions from %s\n", n, args[0])
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported questions (optionally filtered by category)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		counts, _ := cmd.Flags().GetBool("counts")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		w := cmd.OutOrStdout()
		if counts {
			byCat, err := st.QuestionRepo().CountByCategory(cmd.Context())
			if err != nil {
				return err
			}
			cats := make([]string, 0, len(byCat))
			for c := range byCat {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			fmt.Fprintf(w, "%-28s  %5s\n", "Category", "Count")
			fmt.Fprintln(w, strings.Repeat("─", 35))
			for _, c := range cats {
				fmt.Fprintf(w, "%-28s  %5d\n", c, byCat[c])
			}
			return nil
		}

		qs, err := st.QuestionRepo().ListQuestions(cmd.Context(), category)
		if err != nil {
			return err
		}
		if len(qs) == 0 && category != "" {
			return fmt.Errorf("no questions found for category %q", category)
		}

		fmt.Fprintf(w, "%-16s  %-20s  %-12s  %6s  %5s  %5s  %s\n",
			"ID", "Category", "Level", "b", "a", "c", "Text")
		fmt.Fprintln(w, strings.Repeat("─", 100))
		for _, q := range qs {
			text := q.Text
			if len(text) > 30 {
				text = text[:27] + "..."
			}
			fmt.Fprintf(w, "%-16s  %-20s  %-12s  %6.2f  %5.2f  %5.2f  %s\n",
				q.ID, q.Category, q.Difficulty, q.IRTDifficulty, q.Discrimination, q.Guessing, text)
		}
		fmt.Fprintf(w, "\n%d questions\n", len(qs))
		return nil
	},
}

func init() {
	bankListCmd.Flags().String("category", "", "Only list questions in this category")
	bankListCmd.Flags().Bool("counts", false, "Print question counts per category")

	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankListCmd)
}
