package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	recallTopK        int
	recallTokenBudget int
	recallShowScores  bool
)

var recallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Recall memories relevant to a query",
	Long: `Run the full recall pipeline — lexical search, spreading activation,
weighted competition, conflict resolution, budgeted packing — and print
the resulting memories in descending score order.

Examples:
  openmem recall "why did we pick SQLite?"
  openmem recall "API design" --top-k 5 --token-budget 500`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")

		e, err := openEngine()
		if err != nil {
			fatalf("openmem: %v", err)
		}
		defer e.Close()

		results, err := e.Recall(query, recallTopK, recallTokenBudget)
		if err != nil {
			fatalf("openmem: recall: %v", err)
		}

		if len(results) == 0 {
			fmt.Println("no memories found")
			return
		}

		for _, r := range results {
			if recallShowScores {
				fmt.Printf("[%.3f] %s  %s\n", r.Score, r.Memory.ID, r.Memory.Text)
			} else {
				fmt.Printf("%s  %s\n", r.Memory.ID, r.Memory.Text)
			}
		}
	},
}

func init() {
	recallCmd.Flags().IntVar(&recallTopK, "top-k", 5, "max results to return")
	recallCmd.Flags().IntVar(&recallTokenBudget, "token-budget", 2000, "approximate token budget for packed results")
	recallCmd.Flags().BoolVar(&recallShowScores, "scores", false, "print each result's final score")
	rootCmd.AddCommand(recallCmd)
}
