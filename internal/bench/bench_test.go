// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bench

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scipathbench/internal/groundtruth"
	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/pkg/types"
)

func TestTaskSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.yaml")
	want := TaskSet{
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Seed:        42,
		Tasks: []types.Task{
			{
				StartID:           "W1",
				EndID:             "W3",
				GroundTruthLength: 2,
				GroundTruthPath:   []string{"W1", "W2", "W3"},
				Difficulty:        types.DifficultyEasy,
			},
			{
				StartID:           "W4",
				EndID:             "W9",
				GroundTruthLength: 5,
				GroundTruthPath:   []string{"W4", "W5", "W6", "W7", "W8", "W9"},
				Difficulty:        types.DifficultyHard,
			},
		},
	}

	require.NoError(t, SaveTasks(path, want))
	got, err := LoadTasks(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	hard := got.ByDifficulty(types.DifficultyHard)
	require.Len(t, hard, 1)
	assert.Equal(t, "W4", hard[0].StartID)
}

func TestLoadTasksRejectsMissingEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	data := "tasks:\n  - start_id: W1\n    end_id: \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadTasks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing an endpoint")
}

func TestLoadTasksMissingFile(t *testing.T) {
	_, err := LoadTasks(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// poolSource backs both the work pool and the ground-truth solver with a
// fixed citation graph.
type poolSource struct {
	works []types.Paper
	refs  map[string][]string
}

func (s *poolSource) TopWorks(_ context.Context, limit, _ int, _ string) ([]types.Paper, error) {
	if limit > len(s.works) {
		limit = len(s.works)
	}
	return s.works[:limit], nil
}

func (s *poolSource) paper(id string) types.Paper {
	for _, p := range s.works {
		if p.ID == id {
			return p
		}
	}
	return types.Paper{ID: id, Kind: types.KindPaper}
}

func (s *poolSource) GetReferences(_ context.Context, id string) ([]types.Paper, bool, error) {
	var out []types.Paper
	for _, n := range s.refs[id] {
		out = append(out, s.paper(n))
	}
	return out, false, nil
}

func (s *poolSource) GetCitations(_ context.Context, id string) ([]types.Paper, bool, error) {
	var out []types.Paper
	for from, tos := range s.refs {
		for _, to := range tos {
			if to == id {
				out = append(out, s.paper(from))
			}
		}
	}
	return out, false, nil
}

func (s *poolSource) SearchPaper(context.Context, string) (types.Paper, bool, error) {
	return types.Paper{}, false, oracle.ErrNotFound
}

func TestGenerate(t *testing.T) {
	src := &poolSource{
		works: []types.Paper{
			{ID: "W1", Title: "One", Kind: types.KindPaper},
			{ID: "W2", Title: "Two", Kind: types.KindPaper},
			{ID: "W3", Title: "Three", Kind: types.KindPaper},
			{ID: "W4", Title: "Four", Kind: types.KindPaper},
		},
		// W1-W2-W3 connected; W4 isolated.
		refs: map[string][]string{
			"W1": {"W2"},
			"W2": {"W3"},
		},
	}
	gen := NewGenerator(src, groundtruth.New(src, 4, io.Discard), io.Discard)

	ts, err := gen.Generate(context.Background(), GenerateOptions{Count: 3, PoolSize: 4, Seed: 7})
	require.NoError(t, err)
	require.NotEmpty(t, ts.Tasks)
	assert.Equal(t, int64(7), ts.Seed)

	seen := make(map[string]struct{})
	for _, task := range ts.Tasks {
		assert.NotEqual(t, task.StartID, task.EndID)
		assert.NotContains(t, []string{task.StartID, task.EndID}, "W4",
			"isolated work must never appear in a task")
		assert.Equal(t, task.GroundTruthLength, len(task.GroundTruthPath)-1)
		assert.Equal(t, types.BucketDifficulty(task.GroundTruthLength), task.Difficulty)

		key := pairKey(task.StartID, task.EndID)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate pair %s", key)
		seen[key] = struct{}{}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	src := &poolSource{
		works: []types.Paper{
			{ID: "W1", Kind: types.KindPaper},
			{ID: "W2", Kind: types.KindPaper},
			{ID: "W3", Kind: types.KindPaper},
		},
		refs: map[string][]string{
			"W1": {"W2"},
			"W2": {"W3"},
		},
	}

	run := func() TaskSet {
		gen := NewGenerator(src, groundtruth.New(src, 4, io.Discard), io.Discard)
		ts, err := gen.Generate(context.Background(), GenerateOptions{Count: 2, PoolSize: 3, Seed: 99})
		require.NoError(t, err)
		return ts
	}

	a, b := run(), run()
	assert.Equal(t, a.Tasks, b.Tasks)
}

func TestGenerateNoConnectedPairs(t *testing.T) {
	src := &poolSource{
		works: []types.Paper{
			{ID: "W1", Kind: types.KindPaper},
			{ID: "W2", Kind: types.KindPaper},
		},
		refs: map[string][]string{},
	}
	gen := NewGenerator(src, groundtruth.New(src, 3, io.Discard), io.Discard)

	_, err := gen.Generate(context.Background(), GenerateOptions{Count: 1, PoolSize: 2, Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connected pairs")
}
