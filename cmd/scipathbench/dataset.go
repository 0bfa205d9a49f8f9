// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipathbench/internal/bench"
	"github.com/pdiddy/scipathbench/internal/groundtruth"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate a benchmark task file",
	Long: `Dataset draws a pool of highly cited works from OpenAlex, picks random
start/end pairs, solves each pair to ground truth, and writes the connected
ones as a YAML task file with difficulty buckets. Pairs not connected within
the depth bound are skipped.`,
	RunE: runDataset,
}

func init() {
	datasetCmd.Flags().Int("count", 10, "number of tasks to generate")
	datasetCmd.Flags().Int("pool", 100, "size of the top-cited work pool (1-200)")
	datasetCmd.Flags().Int("since", 0, "restrict the pool to works published in or after this year")
	datasetCmd.Flags().String("concept", "", "restrict the pool to an OpenAlex concept ID")
	datasetCmd.Flags().Int64("seed", 0, "RNG seed for pair selection (0 = time-based)")
	datasetCmd.Flags().Int("max-depth", 0, "ground-truth depth bound per side (default 6)")
	datasetCmd.Flags().String("out", "tasks.yaml", "output task file")

	rootCmd.AddCommand(datasetCmd)
}

func runDataset(cmd *cobra.Command, args []string) error {
	client, err := newOracleClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	count, _ := cmd.Flags().GetInt("count")
	pool, _ := cmd.Flags().GetInt("pool")
	since, _ := cmd.Flags().GetInt("since")
	concept, _ := cmd.Flags().GetString("concept")
	seed, _ := cmd.Flags().GetInt64("seed")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	out, _ := cmd.Flags().GetString("out")

	truth := groundtruth.New(client, maxDepth, os.Stderr)
	gen := bench.NewGenerator(client, truth, os.Stdout)

	ts, err := gen.Generate(cmd.Context(), bench.GenerateOptions{
		Count:     count,
		PoolSize:  pool,
		SinceYear: since,
		ConceptID: concept,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	if err := bench.SaveTasks(out, ts); err != nil {
		return err
	}
	fmt.Printf("wrote %d task(s) to %s\n", len(ts.Tasks), out)
	return nil
}
