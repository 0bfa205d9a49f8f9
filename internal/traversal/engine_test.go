// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package traversal

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scipathbench/internal/decider"
	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// citeSource serves a fixed citation graph. refs maps a work to the works it
// cites; citations are answered by the reverse scan. Repeating a call returns
// it as cached, mirroring the real client's zero-cost repeat behavior.
type citeSource struct {
	refs   map[string][]string
	papers map[string]types.Paper

	mu   sync.Mutex
	seen map[string]bool
}

func newCiteSource(refs map[string][]string, papers ...types.Paper) *citeSource {
	s := &citeSource{
		refs:   refs,
		papers: make(map[string]types.Paper),
		seen:   make(map[string]bool),
	}
	for _, p := range papers {
		s.papers[p.ID] = p
	}
	for id := range refs {
		s.ensure(id)
		for _, n := range refs[id] {
			s.ensure(n)
		}
	}
	return s
}

func (s *citeSource) ensure(id string) {
	if _, ok := s.papers[id]; !ok {
		s.papers[id] = types.Paper{ID: id, Title: "Paper " + id, Year: 2000, Kind: types.KindPaper}
	}
}

func (s *citeSource) hit(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cached := s.seen[key]
	s.seen[key] = true
	return cached
}

func (s *citeSource) GetReferences(_ context.Context, id string) ([]types.Paper, bool, error) {
	cached := s.hit("refs:" + id)
	var out []types.Paper
	for _, n := range s.refs[id] {
		out = append(out, s.papers[n])
	}
	return out, cached, nil
}

func (s *citeSource) GetCitations(_ context.Context, id string) ([]types.Paper, bool, error) {
	cached := s.hit("cites:" + id)
	var citing []string
	for from, tos := range s.refs {
		for _, to := range tos {
			if to == id {
				citing = append(citing, from)
			}
		}
	}
	sort.Strings(citing)
	var out []types.Paper
	for _, n := range citing {
		out = append(out, s.papers[n])
	}
	return out, cached, nil
}

func (s *citeSource) SearchPaper(_ context.Context, query string) (types.Paper, bool, error) {
	cached := s.hit("search:" + query)
	if p, ok := s.papers[query]; ok {
		return p, cached, nil
	}
	for _, p := range s.papers {
		if p.Title == query {
			return p, cached, nil
		}
	}
	return types.Paper{}, cached, oracle.ErrNotFound
}

// recorder captures every request handed to the wrapped maker.
type recorder struct {
	inner decider.Maker
	reqs  []decider.Request
}

func (r *recorder) Name() string { return r.inner.Name() }

func (r *recorder) Decide(ctx context.Context, req decider.Request) (decider.Decision, error) {
	r.reqs = append(r.reqs, req)
	return r.inner.Decide(ctx, req)
}

func newEngine(src oracle.Source, maker decider.Maker, cfg types.BenchmarkConfig) (*Engine, *oracle.Meter) {
	meter := oracle.NewMeter(src)
	return New(meter, maker, cfg, io.Discard), meter
}

func expandChoice(id string, side decider.Side, op decider.Op) decider.Decision {
	return decider.Decision{
		Action:  decider.ActionExpand,
		Choices: []decider.Choice{{ID: id, Side: side, Op: op}},
	}
}

func TestRunChainSuccess(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W3"},
	})
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
		expandChoice("W2", decider.SideStart, decider.OpReferences),
	}}
	e, _ := newEngine(src, script, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W3")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, out.Status)
	assert.Equal(t, []string{"W1", "W2", "W3"}, out.Path)
	assert.Equal(t, 2, out.Turns)
	// Two endpoint resolutions plus two expansions.
	assert.Equal(t, 4, out.StepsUsed)
	assert.Len(t, out.Transcript, 4)
}

func TestRunSameStartAndEnd(t *testing.T) {
	src := newCiteSource(map[string][]string{"W1": nil})
	e, _ := newEngine(src, decider.Greedy{}, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, out.Status)
	assert.Equal(t, []string{"W1"}, out.Path)
	assert.Equal(t, 0, out.Turns)
}

func TestRunResolvesFreeTextEndpoints(t *testing.T) {
	src := newCiteSource(map[string][]string{"W1": {"W2"}},
		types.Paper{ID: "W1", Title: "Attention Is All You Need", Year: 2017, Kind: types.KindPaper},
		types.Paper{ID: "W2", Title: "Neural Machine Translation", Year: 2015, Kind: types.KindPaper},
	)
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
	}}
	e, _ := newEngine(src, script, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "Attention Is All You Need", "Neural Machine Translation")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, out.Status)
	assert.Equal(t, []string{"W1", "W2"}, out.Path)
}

func TestRunUnresolvableEndpoint(t *testing.T) {
	src := newCiteSource(map[string][]string{"W1": nil})
	e, _ := newEngine(src, decider.Greedy{}, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "no such paper")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedUnresolvable, out.Status)
	assert.Empty(t, out.Path)
}

func TestRunDisconnectedGraph(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": nil,
		"W9": nil,
	})
	e, _ := newEngine(src, decider.Greedy{}, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedUnresolvable, out.Status)
	assert.Empty(t, out.Path)
}

func TestRunMeetingTieBreakDeterministic(t *testing.T) {
	// Expanding W1 discovers W4 and W5, both already on the end frontier.
	refs := map[string][]string{
		"W1": {"W4", "W5"},
		"W9": {"W4", "W5"},
	}
	for i := 0; i < 10; i++ {
		src := newCiteSource(refs)
		script := &decider.Script{Decisions: []decider.Decision{
			expandChoice("W9", decider.SideEnd, decider.OpReferences),
			expandChoice("W1", decider.SideStart, decider.OpReferences),
		}}
		e, _ := newEngine(src, script, types.BenchmarkConfig{})

		out, err := e.Run(context.Background(), "W1", "W9")
		require.NoError(t, err)
		require.Equal(t, types.StatusSuccess, out.Status)
		assert.Equal(t, []string{"W1", "W4", "W9"}, out.Path)
	}
}

func TestRunDeletedWorksNotOffered(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2", "W3"},
		"W9": nil,
	},
		types.Paper{ID: "W2", Title: "Deleted Work", Kind: types.KindDeleted},
	)
	rec := &recorder{inner: &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
	}}}
	e, _ := newEngine(src, rec, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedUnresolvable, out.Status)

	// W2 reached the graph as a dead end but never the candidate list.
	_, inGraph := out.Graph.Get("W2")
	assert.True(t, inGraph)
	require.GreaterOrEqual(t, len(rec.reqs), 2)
	for _, c := range rec.reqs[len(rec.reqs)-1].Candidates {
		assert.NotEqual(t, "W2", c.ID)
	}
}

func TestRunBudgetExhaustion(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W3"},
		"W3": {"W9"},
	})
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
		expandChoice("W2", decider.SideStart, decider.OpReferences),
	}}
	// Two resolutions plus one expansion hit the budget of 3.
	e, _ := newEngine(src, script, types.BenchmarkConfig{StepBudget: 3})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedBudget, out.Status)
	assert.Equal(t, 3, out.StepsUsed)
}

func TestRunCachedCallsNotBilled(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W9": nil,
	})
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
		expandChoice("W1", decider.SideStart, decider.OpReferences),
	}}
	e, _ := newEngine(src, script, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedUnresolvable, out.Status)
	// Two resolutions plus one billed expansion; the repeat was cached.
	assert.Equal(t, 3, out.StepsUsed)

	var cachedCalls int
	for _, call := range out.Transcript {
		if call.Cached {
			cachedCalls++
		}
	}
	assert.Equal(t, 1, cachedCalls)
}

func TestRunMalformedDecisionFallsBack(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W9"},
	})
	// Malformed on every call: the engine should re-request with a note,
	// then take the deterministic fallback and still finish the task.
	rec := &recorder{inner: &decider.Script{
		Decisions: make([]decider.Decision, 8),
		Errs: []error{
			decider.ErrMalformed, decider.ErrMalformed,
			decider.ErrMalformed, decider.ErrMalformed,
			decider.ErrMalformed, decider.ErrMalformed,
			decider.ErrMalformed, decider.ErrMalformed,
		},
	}}
	e, _ := newEngine(src, rec, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, out.Status)
	assert.Equal(t, []string{"W1", "W2", "W9"}, out.Path)

	// The second request of each turn carries the corrective note.
	require.GreaterOrEqual(t, len(rec.reqs), 2)
	assert.Empty(t, rec.reqs[0].Note)
	assert.NotEmpty(t, rec.reqs[1].Note)
}

func TestRunTurnLimit(t *testing.T) {
	// A long chain the script walks one hop per turn; two turns are not
	// enough to reach the target.
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W3"},
		"W3": {"W4"},
		"W4": {"W9"},
	})
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
		expandChoice("W2", decider.SideStart, decider.OpReferences),
	}}
	e, _ := newEngine(src, script, types.BenchmarkConfig{MaxTurns: 2})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailedBudget, out.Status)
	assert.Equal(t, 2, out.Turns)
}

func TestRunGreedyFindsPath(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W9"},
		"W9": nil,
	})
	e, _ := newEngine(src, decider.Greedy{}, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W9")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, out.Status)
	assert.Equal(t, "W1", out.Path[0])
	assert.Equal(t, "W9", out.Path[len(out.Path)-1])
}

func TestRunRecordsEdgesForFaithfulness(t *testing.T) {
	src := newCiteSource(map[string][]string{
		"W1": {"W2"},
		"W2": {"W3"},
	})
	script := &decider.Script{Decisions: []decider.Decision{
		expandChoice("W1", decider.SideStart, decider.OpReferences),
		expandChoice("W2", decider.SideStart, decider.OpReferences),
	}}
	e, _ := newEngine(src, script, types.BenchmarkConfig{})

	out, err := e.Run(context.Background(), "W1", "W3")
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, out.Status)
	for i := 0; i < len(out.Path)-1; i++ {
		assert.True(t, out.Graph.HasEdge(out.Path[i], out.Path[i+1]))
	}
}
