// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decider defines the decision-maker boundary of the benchmark: the
// entity that chooses which frontier nodes to expand each turn. Variants are
// interchangeable behind a single-method interface with a fixed
// request/response schema, so an automated model, a human, or a
// deterministic search can drive the same traversal engine.
// See docs/ARCHITECTURE.md § Decision Makers.
package decider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// Side names the frontier a candidate belongs to.
type Side string

const (
	SideStart Side = "start"
	SideEnd   Side = "end"
)

// Op selects the oracle operation used to expand a candidate.
type Op string

const (
	OpReferences Op = "references"
	OpCitations  Op = "citations"
)

// Action is the top-level decision verb.
type Action string

const (
	ActionExpand Action = "expand"
	ActionGiveUp Action = "give_up"
)

// ErrMalformed indicates output that does not conform to the decision
// schema. It is recoverable: the engine re-requests once with a corrective
// note, then falls back to a deterministic choice.
var ErrMalformed = errors.New("malformed decision")

// Candidate is one expandable frontier node presented to the decision maker.
type Candidate struct {
	ID       string   `json:"id"`
	Side     Side     `json:"side"`
	Title    string   `json:"title,omitempty"`
	Year     int      `json:"year,omitempty"`
	Concepts []string `json:"concepts,omitempty"`
	Depth    int      `json:"depth"`
}

// Choice selects one candidate and the operation to expand it with.
type Choice struct {
	ID   string `json:"id"`
	Side Side   `json:"side"`
	Op   Op     `json:"op"`
}

// Decision is the decision maker's structured response.
type Decision struct {
	Action  Action   `json:"action"`
	Choices []Choice `json:"choices,omitempty"`
}

// Request carries everything a decision maker may consider: the endpoints,
// the candidate set, the remaining step budget, and a bounded summary of the
// exploration so far. Note carries a corrective message after a malformed
// response.
type Request struct {
	Start           types.Paper
	Target          types.Paper
	Candidates      []Candidate
	RemainingBudget int
	PathSummary     []string
	Note            string
}

// Maker chooses what to explore next. Implementations must produce
// schema-shaped output even when the underlying source is probabilistic.
type Maker interface {
	Name() string
	Decide(ctx context.Context, req Request) (Decision, error)
}

// Validate checks a decision against the candidate set it was made from.
// A violation is reported as ErrMalformed.
func Validate(d Decision, req Request) error {
	switch d.Action {
	case ActionGiveUp:
		return nil
	case ActionExpand:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformed, d.Action)
	}

	if len(d.Choices) == 0 {
		return fmt.Errorf("%w: expand with no choices", ErrMalformed)
	}

	byKey := make(map[string]Side, len(req.Candidates))
	for _, c := range req.Candidates {
		byKey[c.ID] = c.Side
	}
	for _, ch := range d.Choices {
		if ch.Op != OpReferences && ch.Op != OpCitations {
			return fmt.Errorf("%w: unknown operation %q", ErrMalformed, ch.Op)
		}
		side, ok := byKey[ch.ID]
		if !ok {
			return fmt.Errorf("%w: %s is not a candidate", ErrMalformed, ch.ID)
		}
		if side != ch.Side {
			return fmt.Errorf("%w: %s is on the %s frontier, not %s", ErrMalformed, ch.ID, side, ch.Side)
		}
	}
	return nil
}

// Fallback is the deterministic decision used when a maker repeatedly
// produces malformed output: expand the smallest-identifier candidate in
// both directions.
func Fallback(req Request) Decision {
	if len(req.Candidates) == 0 {
		return Decision{Action: ActionGiveUp}
	}

	best := req.Candidates[0]
	for _, c := range req.Candidates[1:] {
		if c.ID < best.ID {
			best = c
		}
	}
	return Decision{
		Action: ActionExpand,
		Choices: []Choice{
			{ID: best.ID, Side: best.Side, Op: OpReferences},
			{ID: best.ID, Side: best.Side, Op: OpCitations},
		},
	}
}

// sortCandidates orders candidates by depth then identifier, the
// presentation order shared by the deterministic and interactive makers.
func sortCandidates(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].ID < out[j].ID
	})
	return out
}
