// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import "context"

// Greedy is the deterministic-search decision maker: it always expands the
// shallowest candidate (ties broken by identifier) in both directions. It
// doubles as the no-API-key baseline and the reference opponent for model
// runs.
type Greedy struct{}

// Name implements Maker.
func (Greedy) Name() string { return "greedy" }

// Decide implements Maker.
func (Greedy) Decide(_ context.Context, req Request) (Decision, error) {
	if len(req.Candidates) == 0 {
		return Decision{Action: ActionGiveUp}, nil
	}

	best := sortCandidates(req.Candidates)[0]
	return Decision{
		Action: ActionExpand,
		Choices: []Choice{
			{ID: best.ID, Side: best.Side, Op: OpReferences},
			{ID: best.ID, Side: best.Side, Op: OpCitations},
		},
	}, nil
}
