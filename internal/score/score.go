// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score turns a finished traversal into the benchmark metrics:
// success, path optimality against the ground truth, billable steps used,
// and faithfulness of the reported path.
// See docs/ARCHITECTURE.md § Scoring.
package score

import (
	"github.com/pdiddy/scipathbench/internal/traversal"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// Evaluate computes the metrics for one run. truthLen is the ground-truth
// shortest path length in hops.
//
// Optimality is truthLen over the agent's hop count, capped at 1.0 (the
// agent cannot beat a correct ground truth; a shorter path would mean the
// ground truth was computed on different data). It is nil for unsuccessful
// runs. When start and end coincide both lengths are zero and optimality
// is 1.0.
//
// Faithfulness re-checks the reported path against the citation graph the
// run actually accumulated: every adjacent pair must be an edge the oracle
// returned. Unsuccessful runs report no path and are unfaithful by
// definition.
func Evaluate(out traversal.Outcome, truthLen int) types.ScoreRecord {
	rec := types.ScoreRecord{
		Success:   out.Status == types.StatusSuccess,
		StepsUsed: out.StepsUsed,
	}
	if !rec.Success {
		return rec
	}

	agentLen := len(out.Path) - 1
	opt := 1.0
	if agentLen > 0 {
		opt = float64(truthLen) / float64(agentLen)
		if opt > 1.0 {
			opt = 1.0
		}
	}
	rec.Optimality = &opt
	rec.Faithful = faithful(out)
	return rec
}

func faithful(out traversal.Outcome) bool {
	if len(out.Path) == 0 || out.Graph == nil {
		return false
	}
	for i := 0; i < len(out.Path)-1; i++ {
		if !out.Graph.HasEdge(out.Path[i], out.Path[i+1]) {
			return false
		}
	}
	return true
}
