// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipathbench/internal/groundtruth"
)

var groundtruthCmd = &cobra.Command{
	Use:   "groundtruth <start> <end>",
	Short: "Solve one paper pair to its shortest citation path",
	Long: `Groundtruth resolves two paper identifiers (OpenAlex work IDs, DOIs, or
free-text titles) and runs an exhaustive bidirectional breadth-first search
over the citation graph to find a shortest path between them. The search is
bounded by --max-depth hops per side.`,
	Args: cobra.ExactArgs(2),
	RunE: runGroundtruth,
}

func init() {
	groundtruthCmd.Flags().Int("max-depth", 0, "search depth bound per side (default 6)")

	rootCmd.AddCommand(groundtruthCmd)
}

func runGroundtruth(cmd *cobra.Command, args []string) error {
	client, err := newOracleClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()

	start, _, err := client.SearchPaper(ctx, args[0])
	if err != nil {
		return fmt.Errorf("resolving start %q: %w", args[0], err)
	}
	end, _, err := client.SearchPaper(ctx, args[1])
	if err != nil {
		return fmt.Errorf("resolving end %q: %w", args[1], err)
	}
	fmt.Printf("start: %s %q (%d)\n", start.ID, start.Title, start.Year)
	fmt.Printf("end:   %s %q (%d)\n", end.ID, end.Title, end.Year)

	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	computer := groundtruth.New(client, maxDepth, os.Stderr)

	path, found, err := computer.ShortestPath(ctx, start.ID, end.ID)
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("no path found within the depth bound")
		return nil
	}

	fmt.Printf("\nshortest path: %d hops\n", len(path)-1)
	for _, id := range path {
		if p, _, err := client.SearchPaper(ctx, id); err == nil {
			fmt.Printf("  %s  %q (%d)\n", id, p.Title, p.Year)
		} else {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
