// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package groundtruth computes benchmark answers with a classical
// bidirectional breadth-first search run directly over the citation oracle.
// Unlike the agent's constrained exploration it is exhaustive: every neighbor
// of every frontier node is expanded. It runs once per task, and the shared
// oracle cache keeps repeated computations cheap.
// See docs/ARCHITECTURE.md § Ground Truth.
package groundtruth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/scipathbench/internal/oracle"
)

// Computer finds shortest citation paths between resolved work IDs.
type Computer struct {
	src      oracle.Source
	maxDepth int
	w        io.Writer
}

// New returns a Computer bounding each search side to maxDepth levels.
func New(src oracle.Source, maxDepth int, w io.Writer) *Computer {
	if maxDepth <= 0 {
		maxDepth = 6
	}
	if w == nil {
		w = io.Discard
	}
	return &Computer{src: src, maxDepth: maxDepth, w: w}
}

// side holds one direction of the bidirectional search. parent maps every
// visited identifier to the identifier it was discovered from; the origin
// maps to "".
type side struct {
	parent   map[string]string
	frontier []string
	depth    int
}

func newSide(origin string) *side {
	return &side{
		parent:   map[string]string{origin: ""},
		frontier: []string{origin},
	}
}

// meeting records an identifier discovered in both searches: other is the
// node already visited by the opposite side, via is the node whose expansion
// discovered it.
type meeting struct {
	other string
	via   string
}

// ShortestPath returns one shortest citation path from startID to endID,
// inclusive of both endpoints. The boolean is false when the works are not
// connected within the depth bound. When several shortest paths exist the
// result is deterministic: among all meeting identifiers found in the same
// round, the lexicographically smallest wins.
func (c *Computer) ShortestPath(ctx context.Context, startID, endID string) ([]string, bool, error) {
	startID = oracle.NormalizeWorkID(startID)
	endID = oracle.NormalizeWorkID(endID)
	if startID == endID {
		return []string{startID}, true, nil
	}

	fwd := newSide(startID)
	bwd := newSide(endID)

	for len(fwd.frontier) > 0 && len(bwd.frontier) > 0 {
		if fwd.depth >= c.maxDepth && bwd.depth >= c.maxDepth {
			return nil, false, nil
		}

		// Expand the smaller frontier first to bound work.
		this, other := fwd, bwd
		if len(bwd.frontier) < len(fwd.frontier) && bwd.depth < c.maxDepth || fwd.depth >= c.maxDepth {
			this, other = bwd, fwd
		}

		meetings, err := c.expandLevel(ctx, this, other)
		if err != nil {
			return nil, false, err
		}
		if len(meetings) > 0 {
			m := pickMeeting(meetings)
			if this == fwd {
				return joinPaths(chainToOrigin(fwd.parent, m.via), chainToOrigin(bwd.parent, m.other)), true, nil
			}
			return joinPaths(chainToOrigin(fwd.parent, m.other), chainToOrigin(bwd.parent, m.via)), true, nil
		}
	}

	return nil, false, nil
}

// expandLevel expands every node in the side's current frontier one level
// and returns any meetings with the opposite side. An unavailable node
// contributes no neighbors rather than failing the search.
func (c *Computer) expandLevel(ctx context.Context, this, other *side) ([]meeting, error) {
	var meetings []meeting
	var next []string

	this.depth++
	fmt.Fprintf(c.w, "bfs: depth %d, frontier %d\n", this.depth, len(this.frontier))

	for _, id := range this.frontier {
		neighbors, err := c.neighbors(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if _, ok := other.parent[n]; ok {
				meetings = append(meetings, meeting{other: n, via: id})
				continue
			}
			if _, ok := this.parent[n]; ok {
				continue
			}
			this.parent[n] = id
			next = append(next, n)
		}
	}

	this.frontier = next
	return meetings, nil
}

// neighbors returns the undirected neighborhood of id: references plus
// citations, deduplicated and normalized.
func (c *Computer) neighbors(ctx context.Context, id string) ([]string, error) {
	refs, _, err := c.src.GetReferences(ctx, id)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			fmt.Fprintf(c.w, "warning: references unavailable for %s, treating as dead end\n", id)
			refs = nil
		} else {
			return nil, fmt.Errorf("references for %s: %w", id, err)
		}
	}
	cites, _, err := c.src.GetCitations(ctx, id)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			fmt.Fprintf(c.w, "warning: citations unavailable for %s, treating as dead end\n", id)
			cites = nil
		} else {
			return nil, fmt.Errorf("citations for %s: %w", id, err)
		}
	}

	seen := make(map[string]struct{}, len(refs)+len(cites))
	var out []string
	for _, p := range append(refs, cites...) {
		n := oracle.NormalizeWorkID(p.ID)
		if n == "" || n == id {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// pickMeeting selects the winning meeting deterministically: smallest meeting
// identifier, then smallest expanding identifier.
func pickMeeting(meetings []meeting) meeting {
	best := meetings[0]
	for _, m := range meetings[1:] {
		if m.other < best.other || (m.other == best.other && m.via < best.via) {
			best = m
		}
	}
	return best
}

// chainToOrigin walks parent pointers from id back to the side's origin and
// returns the chain ordered origin-first.
func chainToOrigin(parent map[string]string, id string) []string {
	var chain []string
	for cur := id; cur != ""; cur = parent[cur] {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// joinPaths concatenates the forward chain (start..via/meet) with the
// backward chain reversed (meet/via..end). The backward chain arrives
// origin-first (end-first) and is flipped here.
func joinPaths(fwdChain, bwdChain []string) []string {
	path := make([]string, 0, len(fwdChain)+len(bwdChain))
	path = append(path, fwdChain...)
	for i := len(bwdChain) - 1; i >= 0; i-- {
		path = append(path, bwdChain[i])
	}
	return path
}
