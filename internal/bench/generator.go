// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bench

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/pdiddy/scipathbench/internal/groundtruth"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// attemptsPerTask bounds how many random pairs are tried per requested task
// before giving up on the pool.
const attemptsPerTask = 20

// WorkPool lists candidate works for pair generation. Satisfied by
// oracle.Client.TopWorks.
type WorkPool interface {
	TopWorks(ctx context.Context, limit, sinceYear int, conceptID string) ([]types.Paper, error)
}

// GenerateOptions controls dataset generation.
type GenerateOptions struct {
	// Count is the number of tasks to produce.
	Count int

	// PoolSize is how many top-cited works to draw pairs from (1-200).
	PoolSize int

	// SinceYear restricts the pool to works published in or after this year.
	// Zero means no restriction.
	SinceYear int

	// ConceptID restricts the pool to an OpenAlex concept, if set.
	ConceptID string

	// Seed seeds pair selection; zero picks a time-based seed.
	Seed int64
}

// Generator builds benchmark task sets: random pairs from a pool of highly
// cited works, solved to ground truth and bucketed by difficulty.
type Generator struct {
	pool  WorkPool
	truth *groundtruth.Computer
	w     io.Writer
}

// NewGenerator builds a generator. Progress is written to w.
func NewGenerator(pool WorkPool, truth *groundtruth.Computer, w io.Writer) *Generator {
	if w == nil {
		w = io.Discard
	}
	return &Generator{pool: pool, truth: truth, w: w}
}

// Generate produces a task set. Pairs whose endpoints are not connected
// within the solver's depth bound are skipped; generation stops when Count
// tasks are found or the attempt budget runs out. Duplicate pairs (in either
// orientation) are never emitted.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions) (TaskSet, error) {
	if opts.Count <= 0 {
		return TaskSet{}, fmt.Errorf("task count must be positive, got %d", opts.Count)
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 100
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	works, err := g.pool.TopWorks(ctx, opts.PoolSize, opts.SinceYear, opts.ConceptID)
	if err != nil {
		return TaskSet{}, fmt.Errorf("fetching work pool: %w", err)
	}
	if len(works) < 2 {
		return TaskSet{}, fmt.Errorf("work pool too small: %d works", len(works))
	}
	fmt.Fprintf(g.w, "pool: %d works, seed %d\n", len(works), opts.Seed)

	rng := rand.New(rand.NewSource(opts.Seed))
	seen := make(map[string]struct{})
	ts := TaskSet{GeneratedAt: time.Now().UTC(), Seed: opts.Seed}

	for attempt := 0; attempt < opts.Count*attemptsPerTask && len(ts.Tasks) < opts.Count; attempt++ {
		if err := ctx.Err(); err != nil {
			return ts, err
		}

		start := works[rng.Intn(len(works))]
		end := works[rng.Intn(len(works))]
		if start.ID == end.ID {
			continue
		}
		key := pairKey(start.ID, end.ID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		path, found, err := g.truth.ShortestPath(ctx, start.ID, end.ID)
		if err != nil {
			return ts, fmt.Errorf("solving %s -> %s: %w", start.ID, end.ID, err)
		}
		if !found {
			fmt.Fprintf(g.w, "skip: %s -> %s not connected within depth bound\n", start.ID, end.ID)
			continue
		}

		length := len(path) - 1
		task := types.Task{
			StartID:           start.ID,
			EndID:             end.ID,
			GroundTruthLength: length,
			GroundTruthPath:   path,
			Difficulty:        types.BucketDifficulty(length),
		}
		ts.Tasks = append(ts.Tasks, task)
		fmt.Fprintf(g.w, "task %d/%d: %s -> %s, %d hops (%s)\n",
			len(ts.Tasks), opts.Count, start.ID, end.ID, length, task.Difficulty)
	}

	if len(ts.Tasks) == 0 {
		return ts, fmt.Errorf("no connected pairs found in %d attempts", opts.Count*attemptsPerTask)
	}
	return ts, nil
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
