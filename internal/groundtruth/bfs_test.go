// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package groundtruth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// graphSource serves a synthetic citation graph. Edges listed under refs are
// returned as references; cites come back empty, which exercises the
// undirected union in the computer.
type graphSource struct {
	refs  map[string][]string
	fail  map[string]bool
	calls int
}

func (g *graphSource) papers(ids []string) []types.Paper {
	out := make([]types.Paper, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.Paper{ID: id, Kind: types.KindPaper})
	}
	return out
}

func (g *graphSource) GetReferences(_ context.Context, id string) ([]types.Paper, bool, error) {
	g.calls++
	if g.fail[id] {
		return nil, false, oracle.ErrUnavailable
	}
	return g.papers(g.refs[id]), false, nil
}

func (g *graphSource) GetCitations(_ context.Context, id string) ([]types.Paper, bool, error) {
	g.calls++
	// Reverse edges so the graph is reachable from both directions.
	var out []string
	for from, tos := range g.refs {
		for _, to := range tos {
			if to == id {
				out = append(out, from)
			}
		}
	}
	return g.papers(out), false, nil
}

func (g *graphSource) SearchPaper(_ context.Context, query string) (types.Paper, bool, error) {
	return types.Paper{ID: query, Kind: types.KindPaper}, false, nil
}

func TestShortestPathChain(t *testing.T) {
	// A–B–C–D chain: shortest path has 3 hops.
	src := &graphSource{refs: map[string][]string{
		"WA": {"WB"},
		"WB": {"WC"},
		"WC": {"WD"},
	}}

	path, found, err := New(src, 6, nil).ShortestPath(context.Background(), "WA", "WD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"WA", "WB", "WC", "WD"}, path)
	assert.Len(t, path, 4) // 3 hops
}

func TestShortestPathSameStartAndEnd(t *testing.T) {
	src := &graphSource{refs: map[string][]string{}}

	path, found, err := New(src, 6, nil).ShortestPath(context.Background(), "WA", "WA")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"WA"}, path)
}

func TestShortestPathDirectEdge(t *testing.T) {
	src := &graphSource{refs: map[string][]string{"WA": {"WB"}}}

	path, found, err := New(src, 6, nil).ShortestPath(context.Background(), "WA", "WB")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"WA", "WB"}, path)
}

func TestShortestPathDisconnected(t *testing.T) {
	src := &graphSource{refs: map[string][]string{
		"WA": {"WB"},
		"WC": {"WD"},
	}}

	_, found, err := New(src, 4, nil).ShortestPath(context.Background(), "WA", "WD")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestShortestPathTieBreakDeterministic(t *testing.T) {
	// Two equal-length paths A–B–D and A–C–D: the lexicographically smaller
	// meeting identifier (WB) must win on every run.
	src := func() *graphSource {
		return &graphSource{refs: map[string][]string{
			"WA": {"WC", "WB"},
			"WB": {"WD"},
			"WC": {"WD"},
		}}
	}

	for i := 0; i < 10; i++ {
		path, found, err := New(src(), 6, nil).ShortestPath(context.Background(), "WA", "WD")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []string{"WA", "WB", "WD"}, path, "run %d", i)
	}
}

func TestShortestPathEveryHopIsARealEdge(t *testing.T) {
	src := &graphSource{refs: map[string][]string{
		"WA": {"WB", "WE"},
		"WB": {"WC"},
		"WE": {"WF"},
		"WC": {"WD"},
		"WF": {"WD"},
	}}

	path, found, err := New(src, 6, nil).ShortestPath(context.Background(), "WA", "WD")
	require.NoError(t, err)
	require.True(t, found)
	require.GreaterOrEqual(t, len(path), 2)

	edge := func(a, b string) bool {
		for _, n := range src.refs[a] {
			if n == b {
				return true
			}
		}
		for _, n := range src.refs[b] {
			if n == a {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, edge(path[i], path[i+1]), "hop %s-%s is not a real edge", path[i], path[i+1])
	}
}

func TestShortestPathUnavailableNodeIsDeadEnd(t *testing.T) {
	// WB's neighbors are unavailable; the search must route around via WC.
	src := &graphSource{
		refs: map[string][]string{
			"WA": {"WB", "WC"},
			"WB": {"WD"},
			"WC": {"WE"},
			"WE": {"WD"},
		},
		fail: map[string]bool{"WB": true},
	}

	path, found, err := New(src, 6, nil).ShortestPath(context.Background(), "WA", "WD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "WA", path[0])
	assert.Equal(t, "WD", path[len(path)-1])
}

func TestShortestPathRespectsDepthBound(t *testing.T) {
	src := &graphSource{refs: map[string][]string{
		"W1": {"W2"}, "W2": {"W3"}, "W3": {"W4"}, "W4": {"W5"},
		"W5": {"W6"}, "W6": {"W7"}, "W7": {"W8"},
	}}

	_, found, err := New(src, 1, nil).ShortestPath(context.Background(), "W1", "W8")
	require.NoError(t, err)
	assert.False(t, found)
}
