// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"sync"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// Meter wraps a Source with per-run step accounting. A cache miss bills one
// step; cache hits and retries bill nothing. Every call is appended to an
// audit transcript tagged with the current turn. Parallel runs sharing one
// cached client each get their own Meter, so budgets stay independent.
// Safe for concurrent use within a run.
type Meter struct {
	src Source

	mu         sync.Mutex
	steps      int
	turn       int
	transcript []types.OracleCall
}

// NewMeter wraps src with a fresh step counter.
func NewMeter(src Source) *Meter {
	return &Meter{src: src}
}

// SetTurn tags subsequent transcript entries with turn n.
func (m *Meter) SetTurn(n int) {
	m.mu.Lock()
	m.turn = n
	m.mu.Unlock()
}

// Steps returns the billable calls charged so far.
func (m *Meter) Steps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps
}

// Transcript returns a copy of the audit log.
func (m *Meter) Transcript() []types.OracleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.OracleCall, len(m.transcript))
	copy(out, m.transcript)
	return out
}

func (m *Meter) record(op, key string, cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = append(m.transcript, types.OracleCall{
		Turn:   m.turn,
		Op:     op,
		Key:    key,
		Cached: cached,
	})
	if !cached {
		m.steps++
	}
}

// GetReferences implements Source.
func (m *Meter) GetReferences(ctx context.Context, id string) ([]types.Paper, bool, error) {
	papers, cached, err := m.src.GetReferences(ctx, id)
	if err == nil {
		m.record(OpReferences, id, cached)
	}
	return papers, cached, err
}

// GetCitations implements Source.
func (m *Meter) GetCitations(ctx context.Context, id string) ([]types.Paper, bool, error) {
	papers, cached, err := m.src.GetCitations(ctx, id)
	if err == nil {
		m.record(OpCitations, id, cached)
	}
	return papers, cached, err
}

// SearchPaper implements Source.
func (m *Meter) SearchPaper(ctx context.Context, query string) (types.Paper, bool, error) {
	p, cached, err := m.src.SearchPaper(ctx, query)
	if err == nil {
		m.record(OpSearch, query, cached)
	}
	return p, cached, err
}
