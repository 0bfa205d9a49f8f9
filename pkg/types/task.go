// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scipathbench benchmark.
// See docs/ARCHITECTURE.md § Data Structures.
package types

// Difficulty buckets a benchmark task by its ground-truth path length.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // 1-2 hops
	DifficultyMedium Difficulty = "medium" // 3-4 hops
	DifficultyHard   Difficulty = "hard"   // 5+ hops
)

// BucketDifficulty maps a ground-truth path length (in hops) to its bucket.
func BucketDifficulty(length int) Difficulty {
	switch {
	case length <= 2:
		return DifficultyEasy
	case length <= 4:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Task is one benchmark problem: find a citation path from StartID to EndID.
// Tasks are produced once by the ground-truth solver and read-only thereafter.
type Task struct {
	// StartID and EndID are resolved OpenAlex work IDs.
	StartID string `json:"start_id" yaml:"start_id"`
	EndID   string `json:"end_id" yaml:"end_id"`

	// GroundTruthLength is the shortest path length in hops.
	GroundTruthLength int `json:"ground_truth_length" yaml:"ground_truth_length"`

	// GroundTruthPath is one example shortest path, start to end inclusive.
	GroundTruthPath []string `json:"ground_truth_path" yaml:"ground_truth_path"`

	// Difficulty is the bucket derived from GroundTruthLength.
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}
