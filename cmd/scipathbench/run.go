// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scipathbench/internal/bench"
	"github.com/pdiddy/scipathbench/internal/decider"
	"github.com/pdiddy/scipathbench/internal/groundtruth"
	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/internal/results"
	"github.com/pdiddy/scipathbench/internal/score"
	"github.com/pdiddy/scipathbench/internal/traversal"
	"github.com/pdiddy/scipathbench/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute benchmark tasks against a decision maker",
	Long: `Run executes benchmark tasks: either every task in a --tasks file, or a
single ad-hoc pair given with --start and --end (solved to ground truth
first). Each run gets a fresh step budget; results are stored in the
results database unless --no-save is given.

The decision maker is selected with --decider: greedy (deterministic
baseline), human (interactive), openrouter or anthropic (LLM-backed,
requiring the matching API key in .secrets/).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("tasks", "", "YAML task file to execute")
	runCmd.Flags().String("start", "", "ad-hoc start paper (work ID, DOI, or title)")
	runCmd.Flags().String("end", "", "ad-hoc end paper (work ID, DOI, or title)")
	runCmd.Flags().String("decider", "greedy", "decision maker: greedy, human, openrouter, anthropic")
	runCmd.Flags().String("model", "", "model identifier for LLM-backed deciders")
	runCmd.Flags().Int("budget", 0, "step budget per run (default 40)")
	runCmd.Flags().Int("max-turns", 0, "decision turns per run (default 15)")
	runCmd.Flags().String("difficulty", "", "only run tasks in this bucket: easy, medium, hard")
	runCmd.Flags().String("results-dir", "results", "directory for the results database")
	runCmd.Flags().Bool("no-save", false, "do not persist results")

	rootCmd.AddCommand(runCmd)
}

// newMaker builds the selected decision maker.
func newMaker(name, model string) (decider.Maker, error) {
	switch name {
	case "greedy":
		return decider.Greedy{}, nil
	case "human":
		return decider.NewHuman(os.Stdin, os.Stdout), nil
	case "openrouter":
		return decider.NewOpenRouter(types.DeciderConfig{
			Model:   model,
			APIKey:  secretDefault("openrouter-api-key", viper.GetString("decider.api_key")),
			BaseURL: viper.GetString("decider.base_url"),
		})
	case "anthropic":
		return decider.NewAnthropic(types.DeciderConfig{
			Model:   model,
			APIKey:  secretDefault("anthropic-api-key", viper.GetString("decider.api_key")),
			BaseURL: viper.GetString("decider.base_url"),
		})
	default:
		return nil, fmt.Errorf("unknown decider %q", name)
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	tasksFile, _ := cmd.Flags().GetString("tasks")
	startArg, _ := cmd.Flags().GetString("start")
	endArg, _ := cmd.Flags().GetString("end")
	deciderName, _ := cmd.Flags().GetString("decider")
	model, _ := cmd.Flags().GetString("model")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	noSave, _ := cmd.Flags().GetBool("no-save")

	if tasksFile == "" && startArg == "" && endArg == "" {
		tasksFile = viper.GetString("benchmark.tasks_file")
	}
	if tasksFile == "" && (startArg == "" || endArg == "") {
		return fmt.Errorf("provide --tasks, or both --start and --end")
	}

	client, err := newOracleClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	maker, err := newMaker(deciderName, model)
	if err != nil {
		return err
	}
	cfg := benchmarkConfig(cmd)
	ctx := cmd.Context()

	var tasks []types.Task
	if tasksFile != "" {
		ts, err := bench.LoadTasks(tasksFile)
		if err != nil {
			return err
		}
		tasks = ts.Tasks
		if difficulty != "" {
			tasks = ts.ByDifficulty(types.Difficulty(difficulty))
		}
		if len(tasks) == 0 {
			return fmt.Errorf("no tasks to run in %s", tasksFile)
		}
	} else {
		task, err := solveAdHocTask(cmd, client, startArg, endArg, cfg)
		if err != nil {
			return err
		}
		tasks = []types.Task{task}
	}

	var store *results.Store
	if !noSave {
		if store, err = results.NewStore(cfg.ResultsDir); err != nil {
			return err
		}
		defer store.Close()
	}

	var successes int
	for i, task := range tasks {
		fmt.Printf("\n=== task %d/%d: %s -> %s (%s, %d hops) ===\n",
			i+1, len(tasks), task.StartID, task.EndID, task.Difficulty, task.GroundTruthLength)

		meter := oracle.NewMeter(client)
		engine := traversal.New(meter, maker, cfg, os.Stdout)

		started := time.Now()
		out, err := engine.Run(ctx, task.StartID, task.EndID)
		if err != nil {
			return fmt.Errorf("task %s -> %s: %w", task.StartID, task.EndID, err)
		}

		rec := score.Evaluate(out, task.GroundTruthLength)
		if rec.Success {
			successes++
		}

		result := types.RunResult{
			Task:       task,
			Decider:    maker.Name(),
			Model:      model,
			Status:     out.Status,
			AgentPath:  out.Path,
			Turns:      out.Turns,
			Score:      rec,
			Transcript: out.Transcript,
			StartedAt:  started.UTC(),
			Duration:   time.Since(started),
		}
		printRunSummary(result)

		if store != nil {
			if err := store.Save(ctx, &result); err != nil {
				return err
			}
			fmt.Printf("saved run %s\n", result.ID)
		}
	}

	fmt.Printf("\n%d/%d task(s) succeeded\n", successes, len(tasks))
	return nil
}

// solveAdHocTask resolves an ad-hoc pair and computes its ground truth so
// the run can be scored like a dataset task.
func solveAdHocTask(cmd *cobra.Command, client *oracle.Client, startArg, endArg string, cfg types.BenchmarkConfig) (types.Task, error) {
	ctx := cmd.Context()

	start, _, err := client.SearchPaper(ctx, startArg)
	if err != nil {
		return types.Task{}, fmt.Errorf("resolving start %q: %w", startArg, err)
	}
	end, _, err := client.SearchPaper(ctx, endArg)
	if err != nil {
		return types.Task{}, fmt.Errorf("resolving end %q: %w", endArg, err)
	}

	fmt.Println("computing ground truth for ad-hoc pair...")
	truth := groundtruth.New(client, cfg.BFSMaxDepth, os.Stderr)
	path, found, err := truth.ShortestPath(ctx, start.ID, end.ID)
	if err != nil {
		return types.Task{}, err
	}
	if !found {
		return types.Task{}, fmt.Errorf("%s and %s are not connected within %d hops per side",
			start.ID, end.ID, cfg.BFSMaxDepth)
	}

	length := len(path) - 1
	return types.Task{
		StartID:           start.ID,
		EndID:             end.ID,
		GroundTruthLength: length,
		GroundTruthPath:   path,
		Difficulty:        types.BucketDifficulty(length),
	}, nil
}

func printRunSummary(r types.RunResult) {
	fmt.Printf("status: %s, turns: %d, steps: %d, duration: %s\n",
		r.Status, r.Turns, r.Score.StepsUsed, formatDuration(r.Duration))
	if r.Score.Success {
		fmt.Printf("path (%d hops): %v\n", len(r.AgentPath)-1, r.AgentPath)
		fmt.Printf("optimality: %.2f, faithful: %v\n", *r.Score.Optimality, r.Score.Faithful)
	}
}
