// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipathbench/internal/results"
	"github.com/pdiddy/scipathbench/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Report stored benchmark runs",
	Long: `Results reports on the run database: the per-decider leaderboard and
aggregate statistics by default, or individual runs with --recent or
--decider.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().String("results-dir", "results", "directory for the results database")
	resultsCmd.Flags().Int("recent", 0, "list the N most recent runs instead of the leaderboard")
	resultsCmd.Flags().String("decider", "", "list runs for one decision maker")

	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	recent, _ := cmd.Flags().GetInt("recent")
	deciderName, _ := cmd.Flags().GetString("decider")

	store, err := results.NewStore(resultsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if recent > 0 || deciderName != "" {
		var runs []types.RunResult
		if deciderName != "" {
			runs, err = store.ByDecider(ctx, deciderName, recent)
		} else {
			runs, err = store.Recent(ctx, recent)
		}
		if err != nil {
			return err
		}
		printRuns(runs)
		return nil
	}

	rows, err := store.Leaderboard(ctx)
	if err != nil {
		return err
	}
	results.FormatLeaderboard(rows, os.Stdout)

	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\ntotal runs: %d, successes: %d, mean optimality: %.2f, mean steps: %.1f\n",
		st.TotalRuns, st.Successes, st.MeanOptimality, st.MeanSteps)
	return nil
}

func printRuns(runs []types.RunResult) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Printf("%-36s  %-19s  %-12s  %-20s  %-5s  %s\n",
		"ID", "Started", "Decider", "Status", "Steps", "Task")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Printf("%-36s  %-19s  %-12s  %-20s  %-5d  %s -> %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Decider,
			r.Status, r.Score.StepsUsed, r.Task.StartID, r.Task.EndID)
	}
}
