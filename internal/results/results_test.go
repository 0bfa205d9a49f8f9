// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scipathbench/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(decider string, success bool, started time.Time) types.RunResult {
	r := types.RunResult{
		Task: types.Task{
			StartID:           "W1",
			EndID:             "W9",
			GroundTruthLength: 2,
			GroundTruthPath:   []string{"W1", "W5", "W9"},
			Difficulty:        types.DifficultyEasy,
		},
		Decider:   decider,
		Status:    types.StatusFailedBudget,
		Turns:     5,
		StartedAt: started,
		Duration:  3 * time.Second,
		Score:     types.ScoreRecord{StepsUsed: 12},
		Transcript: []types.OracleCall{
			{Turn: 1, Op: "references", Key: "W1"},
			{Turn: 1, Op: "citations", Key: "W1", Cached: true},
		},
	}
	if success {
		opt := 1.0
		r.Status = types.StatusSuccess
		r.AgentPath = []string{"W1", "W5", "W9"}
		r.Score = types.ScoreRecord{Success: true, Optimality: &opt, StepsUsed: 8, Faithful: true}
	}
	return r
}

func TestSaveAssignsIDAndGetRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := sampleRun("greedy", true, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, &run))
	require.NotEmpty(t, run.ID)

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Task.StartID, got.Task.StartID)
	assert.Equal(t, run.Task.Difficulty, got.Task.Difficulty)
	assert.Equal(t, run.Status, got.Status)
	assert.Equal(t, run.AgentPath, got.AgentPath)
	assert.Equal(t, run.Transcript, got.Transcript)
	require.NotNil(t, got.Score.Optimality)
	assert.Equal(t, 1.0, *got.Score.Optimality)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))
	assert.Equal(t, run.Duration, got.Duration)
}

func TestGetMissingRun(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRecentAndByDecider(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := sampleRun("greedy", true, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Save(ctx, &run))
	}
	other := sampleRun("openrouter", false, base.Add(time.Hour))
	other.Model = "mistralai/ministral-8b"
	require.NoError(t, s.Save(ctx, &other))

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "openrouter", recent[0].Decider, "newest run first")

	greedy, err := s.ByDecider(ctx, "greedy", 10)
	require.NoError(t, err)
	assert.Len(t, greedy, 3)
}

func TestLeaderboardAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	// greedy: 2 successes out of 2; openrouter: 1 of 2.
	for i := 0; i < 2; i++ {
		run := sampleRun("greedy", true, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Save(ctx, &run))
	}
	for i := 0; i < 2; i++ {
		run := sampleRun("openrouter", i == 0, base.Add(time.Duration(i)*time.Hour))
		run.Model = "mistralai/ministral-8b"
		require.NoError(t, s.Save(ctx, &run))
	}

	rows, err := s.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "greedy", rows[0].Decider)
	assert.Equal(t, 1.0, rows[0].SuccessRate)
	assert.Equal(t, 1.0, rows[0].MeanOptimality)
	assert.Equal(t, "openrouter", rows[1].Decider)
	assert.Equal(t, 0.5, rows[1].SuccessRate)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalRuns)
	assert.Equal(t, 3, st.Successes)
	assert.Equal(t, 1.0, st.MeanOptimality)
	assert.InDelta(t, 9.0, st.MeanSteps, 0.01)
}

func TestFormatLeaderboard(t *testing.T) {
	var sb strings.Builder
	FormatLeaderboard(nil, &sb)
	assert.Contains(t, sb.String(), "No runs recorded.")

	sb.Reset()
	FormatLeaderboard([]LeaderboardRow{
		{Decider: "greedy", Runs: 4, SuccessRate: 0.75, MeanOptimality: 0.9, MeanSteps: 21.5},
	}, &sb)
	out := sb.String()
	assert.Contains(t, out, "greedy")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "0.90")
}
