// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds the in-memory citation graph a run accumulates as the
// oracle is queried. The graph is append-only for the lifetime of a run:
// papers and edges are never removed, so any path reconstructed from frontier
// parent pointers stays valid as later expansions add unrelated edges.
// See docs/ARCHITECTURE.md § Paper Graph.
package graph

import (
	"sort"
	"sync"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// PaperGraph maps work IDs to papers plus an undirected adjacency set.
// Citation direction is discarded: if A cites B the edge is usable from
// either endpoint. Safe for concurrent use.
type PaperGraph struct {
	mu    sync.RWMutex
	nodes map[string]types.Paper
	adj   map[string]map[string]struct{}
}

// New returns an empty PaperGraph.
func New() *PaperGraph {
	return &PaperGraph{
		nodes: make(map[string]types.Paper),
		adj:   make(map[string]map[string]struct{}),
	}
}

// AddPaper records a paper. Re-adding an existing identifier is a no-op on
// existing fields, except that a sentinel of kind "unknown" is upgraded in
// place when real metadata arrives.
func (g *PaperGraph) AddPaper(p types.Paper) {
	if p.ID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.nodes[p.ID]
	if ok && existing.Kind != types.KindUnknown {
		return
	}
	if ok && p.Kind == types.KindUnknown {
		return
	}
	g.nodes[p.ID] = p
}

// AddEdge records an undirected edge between two identifiers. Idempotent and
// symmetric; self-loops are ignored.
func (g *PaperGraph) AddEdge(a, b string) {
	if a == "" || b == "" || a == b {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.adj[a] == nil {
		g.adj[a] = make(map[string]struct{})
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[string]struct{})
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// Get returns the paper for id, if present.
func (g *PaperGraph) Get(id string) (types.Paper, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.nodes[id]
	return p, ok
}

// Neighbors returns the sorted neighbor identifiers of id.
func (g *PaperGraph) Neighbors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	set := g.adj[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether an edge between a and b was recorded.
func (g *PaperGraph) HasEdge(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adj[a][b]
	return ok
}

// Len returns the number of papers in the graph.
func (g *PaperGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
