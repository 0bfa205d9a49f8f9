// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// LeaderboardRow aggregates all runs of one decider/model combination.
type LeaderboardRow struct {
	Decider string
	Model   string

	// Runs is the total number of recorded runs.
	Runs int

	// SuccessRate is successes over runs, in [0, 1].
	SuccessRate float64

	// MeanOptimality averages optimality over successful runs only; zero
	// when there are no successes.
	MeanOptimality float64

	// MeanSteps averages billable steps over all runs.
	MeanSteps float64
}

// Leaderboard aggregates runs per decider/model, ordered by success rate
// then mean optimality, best first.
func (s *Store) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT decider, model, COUNT(*),
			AVG(success),
			COALESCE(AVG(CASE WHEN success THEN optimality END), 0),
			AVG(steps_used)
		 FROM runs
		 GROUP BY decider, model
		 ORDER BY AVG(success) DESC, 5 DESC, decider, model`)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Decider, &r.Model, &r.Runs,
			&r.SuccessRate, &r.MeanOptimality, &r.MeanSteps); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarizes the whole store.
type Stats struct {
	TotalRuns      int
	Successes      int
	MeanOptimality float64
	MeanSteps      float64
}

// Stats aggregates over all recorded runs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(AVG(CASE WHEN success THEN optimality END), 0),
			COALESCE(AVG(steps_used), 0)
		 FROM runs`).
		Scan(&st.TotalRuns, &st.Successes, &st.MeanOptimality, &st.MeanSteps)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return st, nil
}

// FormatLeaderboard writes leaderboard rows as a human-readable table to w.
func FormatLeaderboard(rows []LeaderboardRow, w io.Writer) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-32s  %-5s  %-8s  %-10s  %s\n",
		"Decider", "Model", "Runs", "Success", "Optimality", "Steps")
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, r := range rows {
		model := r.Model
		if model == "" {
			model = "-"
		}
		if len(model) > 32 {
			model = model[:29] + "..."
		}
		fmt.Fprintf(w, "%-12s  %-32s  %-5d  %-8s  %-10s  %.1f\n",
			r.Decider, model, r.Runs,
			fmt.Sprintf("%.0f%%", r.SuccessRate*100),
			fmt.Sprintf("%.2f", r.MeanOptimality),
			r.MeanSteps)
	}
}
