// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import "context"

// Script replays a fixed sequence of decisions (or injected errors) and
// gives up when the sequence is exhausted. Used by tests to drive the
// traversal engine deterministically.
type Script struct {
	Decisions []Decision
	Errs      []error // optional, aligned by index with Decisions

	next int
}

// Name implements Maker.
func (*Script) Name() string { return "script" }

// Decide implements Maker.
func (s *Script) Decide(_ context.Context, _ Request) (Decision, error) {
	if s.next >= len(s.Decisions) {
		return Decision{Action: ActionGiveUp}, nil
	}
	i := s.next
	s.next++
	if i < len(s.Errs) && s.Errs[i] != nil {
		return Decision{}, s.Errs[i]
	}
	return s.Decisions[i], nil
}
