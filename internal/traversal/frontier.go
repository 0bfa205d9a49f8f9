// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package traversal runs the turn-based bidirectional exploration loop: it
// grows one frontier from each endpoint, asks a decision maker which frontier
// nodes to expand, executes the expansions against the metered oracle, and
// detects when the frontiers meet.
// See docs/ARCHITECTURE.md § Traversal Engine.
package traversal

import "sort"

type frontierNode struct {
	depth  int
	parent string
}

// Frontier tracks one side of the bidirectional search: every identifier
// discovered from its origin, with parent pointers for path reconstruction,
// and the subset already expanded. Not safe for concurrent use; the engine
// serializes access under its own lock.
type Frontier struct {
	origin   string
	nodes    map[string]frontierNode
	expanded map[string]struct{}
}

// NewFrontier seeds a frontier with its origin at depth zero.
func NewFrontier(origin string) *Frontier {
	return &Frontier{
		origin:   origin,
		nodes:    map[string]frontierNode{origin: {}},
		expanded: make(map[string]struct{}),
	}
}

// Add records id as discovered via parent. The first discovery wins: re-adding
// an already-known identifier is a no-op, keeping depths and parent chains
// stable. Reports whether id was new.
func (f *Frontier) Add(id, parent string) bool {
	if _, ok := f.nodes[id]; ok {
		return false
	}
	p, ok := f.nodes[parent]
	if !ok {
		return false
	}
	f.nodes[id] = frontierNode{depth: p.depth + 1, parent: parent}
	return true
}

// Contains reports whether id has been discovered on this side.
func (f *Frontier) Contains(id string) bool {
	_, ok := f.nodes[id]
	return ok
}

// Depth returns the discovery depth of id, or -1 if unknown.
func (f *Frontier) Depth(id string) int {
	n, ok := f.nodes[id]
	if !ok {
		return -1
	}
	return n.depth
}

// MarkExpanded records that id's neighbors have been fetched.
func (f *Frontier) MarkExpanded(id string) {
	f.expanded[id] = struct{}{}
}

// Expanded reports whether id has been expanded.
func (f *Frontier) Expanded(id string) bool {
	_, ok := f.expanded[id]
	return ok
}

// Boundary returns the sorted identifiers discovered but not yet expanded.
func (f *Frontier) Boundary() []string {
	out := make([]string, 0, len(f.nodes))
	for id := range f.nodes {
		if _, ok := f.expanded[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// PathToOrigin returns the identifier chain from id back to the origin,
// inclusive. Returns nil if id is unknown.
func (f *Frontier) PathToOrigin(id string) []string {
	if _, ok := f.nodes[id]; !ok {
		return nil
	}
	var path []string
	for cur := id; ; {
		path = append(path, cur)
		if cur == f.origin {
			return path
		}
		cur = f.nodes[cur].parent
	}
}
