// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bench handles benchmark task files: the YAML data contract between
// dataset generation and run execution, and the generator that builds task
// sets from a pool of highly cited works.
// See docs/ARCHITECTURE.md § Benchmark Tasks.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// TaskSet is the on-disk benchmark task file.
type TaskSet struct {
	// GeneratedAt records when the set was produced.
	GeneratedAt time.Time `yaml:"generated_at"`

	// Seed is the RNG seed used for pair selection, for reproducibility.
	Seed int64 `yaml:"seed"`

	// Tasks are the benchmark problems.
	Tasks []types.Task `yaml:"tasks"`
}

// ByDifficulty returns the subset of tasks in the given bucket.
func (ts TaskSet) ByDifficulty(d types.Difficulty) []types.Task {
	var out []types.Task
	for _, t := range ts.Tasks {
		if t.Difficulty == d {
			out = append(out, t)
		}
	}
	return out
}

// LoadTasks reads a task set from a YAML file.
func LoadTasks(path string) (TaskSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TaskSet{}, fmt.Errorf("reading task file: %w", err)
	}
	var ts TaskSet
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return TaskSet{}, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	for i, task := range ts.Tasks {
		if task.StartID == "" || task.EndID == "" {
			return TaskSet{}, fmt.Errorf("task %d in %s is missing an endpoint", i, path)
		}
	}
	return ts, nil
}

// SaveTasks writes a task set to a YAML file, creating parent directories as
// needed.
func SaveTasks(path string, ts TaskSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating task directory: %w", err)
	}
	data, err := yaml.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encoding task file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing task file: %w", err)
	}
	return nil
}
