// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package traversal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/scipathbench/internal/decider"
	"github.com/pdiddy/scipathbench/internal/graph"
	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// pathSummaryCap bounds how many expanded-paper titles are carried in the
// decision prompt.
const pathSummaryCap = 20

// Outcome is the terminal state of one traversal run.
type Outcome struct {
	Status     types.RunStatus
	Path       []string
	StepsUsed  int
	Turns      int
	Transcript []types.OracleCall

	// Graph is the citation graph accumulated during the run, used for
	// faithfulness verification.
	Graph *graph.PaperGraph
}

// Engine executes one benchmark run: resolve the endpoints, then alternate
// decision turns and oracle expansions until the frontiers meet, the step
// budget runs out, or the decision maker gives up.
type Engine struct {
	meter *oracle.Meter
	maker decider.Maker
	cfg   types.BenchmarkConfig
	w     io.Writer

	mu      sync.Mutex
	graph   *graph.PaperGraph
	start   *Frontier
	end     *Frontier
	summary []string
}

// New builds an engine around a per-run meter and a decision maker. Progress
// is written to w.
func New(meter *oracle.Meter, maker decider.Maker, cfg types.BenchmarkConfig, w io.Writer) *Engine {
	cfg.Normalize()
	return &Engine{
		meter: meter,
		maker: maker,
		cfg:   cfg,
		w:     w,
		graph: graph.New(),
	}
}

// Run resolves the two endpoints (work IDs, DOIs, or free-text titles) and
// drives the turn loop to a terminal state. A non-nil error means the run
// aborted (context cancellation or decider transport failure), not that the
// benchmark task failed; task failures are reported in Outcome.Status.
func (e *Engine) Run(ctx context.Context, startQuery, endQuery string) (Outcome, error) {
	e.meter.SetTurn(0)

	startPaper, err := e.resolve(ctx, startQuery)
	if err != nil {
		return e.outcome(types.StatusFailedUnresolvable, nil, 0), err
	}
	endPaper, err := e.resolve(ctx, endQuery)
	if err != nil {
		return e.outcome(types.StatusFailedUnresolvable, nil, 0), err
	}
	if startPaper.Kind != types.KindPaper || endPaper.Kind != types.KindPaper {
		fmt.Fprintf(e.w, "endpoint unresolvable: %q / %q\n", startQuery, endQuery)
		return e.outcome(types.StatusFailedUnresolvable, nil, 0), nil
	}

	e.graph.AddPaper(startPaper)
	e.graph.AddPaper(endPaper)
	e.start = NewFrontier(startPaper.ID)
	e.end = NewFrontier(endPaper.ID)

	if startPaper.ID == endPaper.ID {
		return e.outcome(types.StatusSuccess, []string{startPaper.ID}, 0), nil
	}

	fmt.Fprintf(e.w, "run: %q (%s) <-> %q (%s), budget %d steps\n",
		startPaper.Title, startPaper.ID, endPaper.Title, endPaper.ID, e.cfg.StepBudget)

	for turn := 1; turn <= e.cfg.MaxTurns; turn++ {
		e.meter.SetTurn(turn)

		if err := ctx.Err(); err != nil {
			return e.outcome(types.StatusFailedUnresolvable, nil, turn-1), err
		}
		if e.meter.Steps() >= e.cfg.StepBudget {
			fmt.Fprintf(e.w, "turn %d: step budget exhausted\n", turn)
			return e.outcome(types.StatusFailedBudget, nil, turn-1), nil
		}

		req := e.buildRequest(startPaper, endPaper)
		if len(req.Candidates) == 0 {
			fmt.Fprintf(e.w, "turn %d: both frontiers exhausted\n", turn)
			return e.outcome(types.StatusFailedUnresolvable, nil, turn-1), nil
		}

		d, err := e.decide(ctx, req)
		if err != nil {
			return e.outcome(types.StatusFailedUnresolvable, nil, turn-1), err
		}
		if d.Action == decider.ActionGiveUp {
			fmt.Fprintf(e.w, "turn %d: decider gave up\n", turn)
			return e.outcome(types.StatusFailedUnresolvable, nil, turn), nil
		}

		meeting, err := e.expand(ctx, d.Choices)
		if err != nil {
			return e.outcome(types.StatusFailedUnresolvable, nil, turn), err
		}
		if meeting != "" {
			path := e.joinAt(meeting)
			fmt.Fprintf(e.w, "turn %d: frontiers met at %s, path length %d\n",
				turn, meeting, len(path))
			return e.outcome(types.StatusSuccess, path, turn), nil
		}
	}

	fmt.Fprintf(e.w, "turn limit reached after %d turns\n", e.cfg.MaxTurns)
	return e.outcome(types.StatusFailedBudget, nil, e.cfg.MaxTurns), nil
}

// Graph exposes the accumulated citation graph for scoring.
func (e *Engine) Graph() *graph.PaperGraph { return e.graph }

// resolve turns a query into a paper via the oracle. ErrNotFound is reported
// through the outcome, any other failure through the error.
func (e *Engine) resolve(ctx context.Context, query string) (types.Paper, error) {
	p, _, err := e.meter.SearchPaper(ctx, query)
	if errors.Is(err, oracle.ErrNotFound) {
		return types.Paper{Kind: types.KindUnknown}, nil
	}
	if err != nil {
		return types.Paper{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	return p, nil
}

// buildRequest assembles the candidate set from both frontier boundaries.
// Deleted works stay in the graph as dead ends but are never offered.
func (e *Engine) buildRequest(start, end types.Paper) decider.Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cands []decider.Candidate
	for _, side := range []struct {
		f    *Frontier
		name decider.Side
	}{{e.start, decider.SideStart}, {e.end, decider.SideEnd}} {
		for _, id := range side.f.Boundary() {
			p, ok := e.graph.Get(id)
			if ok && !p.IsExpandable() {
				continue
			}
			cands = append(cands, decider.Candidate{
				ID:       id,
				Side:     side.name,
				Title:    p.Title,
				Year:     p.Year,
				Concepts: p.Concepts,
				Depth:    side.f.Depth(id),
			})
		}
	}

	summary := make([]string, len(e.summary))
	copy(summary, e.summary)

	return decider.Request{
		Start:           start,
		Target:          end,
		Candidates:      cands,
		RemainingBudget: e.cfg.StepBudget - e.meter.Steps(),
		PathSummary:     summary,
	}
}

// decide runs the maker with one malformed-output retry, then falls back to
// the deterministic choice. Transport and context errors abort the run.
func (e *Engine) decide(ctx context.Context, req decider.Request) (decider.Decision, error) {
	d, err := e.maker.Decide(ctx, req)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, decider.ErrMalformed) {
		return decider.Decision{}, fmt.Errorf("decider %s: %w", e.maker.Name(), err)
	}

	fmt.Fprintf(e.w, "malformed decision, re-requesting: %v\n", err)
	req.Note = err.Error()
	d, err = e.maker.Decide(ctx, req)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, decider.ErrMalformed) {
		return decider.Decision{}, fmt.Errorf("decider %s: %w", e.maker.Name(), err)
	}

	fmt.Fprintln(e.w, "malformed decision twice, using fallback choice")
	return decider.Fallback(req), nil
}

// expand executes the chosen oracle calls concurrently and reports the
// meeting node, if any. When several meetings occur within one turn the
// lexicographically smallest identifier wins, keeping runs reproducible.
func (e *Engine) expand(ctx context.Context, choices []decider.Choice) (string, error) {
	meetings := make(map[string]struct{})

	g, ctx := errgroup.WithContext(ctx)
	for _, ch := range choices {
		if e.meter.Steps() >= e.cfg.StepBudget {
			break
		}
		ch := ch
		g.Go(func() error {
			return e.expandOne(ctx, ch, meetings)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(meetings) == 0 {
		return "", nil
	}
	ids := make([]string, 0, len(meetings))
	for id := range meetings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0], nil
}

func (e *Engine) expandOne(ctx context.Context, ch decider.Choice, meetings map[string]struct{}) error {
	var (
		papers []types.Paper
		err    error
	)
	switch ch.Op {
	case decider.OpReferences:
		papers, _, err = e.meter.GetReferences(ctx, ch.ID)
	case decider.OpCitations:
		papers, _, err = e.meter.GetCitations(ctx, ch.ID)
	default:
		return fmt.Errorf("unknown operation %q", ch.Op)
	}
	if errors.Is(err, oracle.ErrUnavailable) || errors.Is(err, oracle.ErrNotFound) {
		// Dead end for this candidate; the run continues.
		fmt.Fprintf(e.w, "expanding %s %s: %v\n", ch.ID, ch.Op, err)
		papers = nil
	} else if err != nil {
		return fmt.Errorf("expanding %s %s: %w", ch.ID, ch.Op, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	this, other := e.start, e.end
	if ch.Side == decider.SideEnd {
		this, other = e.end, e.start
	}
	this.MarkExpanded(ch.ID)

	if p, ok := e.graph.Get(ch.ID); ok && len(e.summary) < pathSummaryCap && p.Title != "" {
		e.summary = append(e.summary, p.Title)
	}

	for _, p := range papers {
		e.graph.AddPaper(p)
		e.graph.AddEdge(ch.ID, p.ID)
		this.Add(p.ID, ch.ID)
		if other.Contains(p.ID) {
			meetings[p.ID] = struct{}{}
		}
	}
	return nil
}

// joinAt reconstructs the start-to-end path through the meeting node.
func (e *Engine) joinAt(meeting string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	fromStart := e.start.PathToOrigin(meeting)
	for i, j := 0, len(fromStart)-1; i < j; i, j = i+1, j-1 {
		fromStart[i], fromStart[j] = fromStart[j], fromStart[i]
	}
	return append(fromStart, e.end.PathToOrigin(meeting)[1:]...)
}

func (e *Engine) outcome(status types.RunStatus, path []string, turns int) Outcome {
	return Outcome{
		Status:     status,
		Path:       path,
		StepsUsed:  e.meter.Steps(),
		Turns:      turns,
		Transcript: e.meter.Transcript(),
		Graph:      e.graph,
	}
}
