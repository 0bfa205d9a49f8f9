// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxPromptAttempts bounds how often an unparseable line is re-prompted
// before the turn falls back to giving up.
const maxPromptAttempts = 3

// Human is an interactive decision maker reading choices from a terminal.
// Each turn it prints the candidate table and accepts lines of the form
//
//	W123 references
//	W123 citations
//	W123 both
//	give up
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHuman builds an interactive maker reading from in and writing to out.
func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{in: bufio.NewScanner(in), out: out}
}

// Name implements Maker.
func (*Human) Name() string { return "human" }

// Decide implements Maker.
func (h *Human) Decide(_ context.Context, req Request) (Decision, error) {
	h.printRequest(req)

	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Fprint(h.out, "> ")
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return Decision{}, fmt.Errorf("reading input: %w", err)
			}
			// EOF on stdin ends the run.
			return Decision{Action: ActionGiveUp}, nil
		}

		d, err := h.parseLine(h.in.Text(), req)
		if err != nil {
			fmt.Fprintf(h.out, "%v\n", err)
			continue
		}
		return d, nil
	}
	fmt.Fprintln(h.out, "Too many invalid inputs, giving up this run.")
	return Decision{Action: ActionGiveUp}, nil
}

func (h *Human) printRequest(req Request) {
	fmt.Fprintf(h.out, "\nSTART: %q (%d)\n", req.Start.Title, req.Start.Year)
	fmt.Fprintf(h.out, "END:   %q (%d)\n", req.Target.Title, req.Target.Year)
	fmt.Fprintf(h.out, "Remaining budget: %d oracle calls\n\n", req.RemainingBudget)

	fmt.Fprintf(h.out, "%-14s  %-6s  %-5s  %-4s  %-50s  %s\n",
		"ID", "Side", "Depth", "Year", "Title", "Concepts")
	fmt.Fprintln(h.out, strings.Repeat("-", 100))
	for _, c := range sortCandidates(req.Candidates) {
		title := c.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		year := ""
		if c.Year != 0 {
			year = fmt.Sprintf("%d", c.Year)
		}
		fmt.Fprintf(h.out, "%-14s  %-6s  %-5d  %-4s  %-50s  %s\n",
			c.ID, c.Side, c.Depth, year, title, strings.Join(c.Concepts, ", "))
	}
	fmt.Fprintln(h.out, "\nEnter: <id> references|citations|both, or \"give up\".")
}

func (h *Human) parseLine(line string, req Request) (Decision, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Decision{}, fmt.Errorf("empty input")
	}
	if fields[0] == "give" || fields[0] == "give_up" || fields[0] == "giveup" {
		return Decision{Action: ActionGiveUp}, nil
	}
	if len(fields) != 2 {
		return Decision{}, fmt.Errorf("expected \"<id> references|citations|both\"")
	}

	id := strings.ToUpper(fields[0])
	var side Side
	found := false
	for _, c := range req.Candidates {
		if c.ID == id {
			side, found = c.Side, true
			break
		}
	}
	if !found {
		return Decision{}, fmt.Errorf("%s is not a candidate", id)
	}

	var choices []Choice
	switch fields[1] {
	case "references", "refs":
		choices = []Choice{{ID: id, Side: side, Op: OpReferences}}
	case "citations", "cites":
		choices = []Choice{{ID: id, Side: side, Op: OpCitations}}
	case "both":
		choices = []Choice{
			{ID: id, Side: side, Op: OpReferences},
			{ID: id, Side: side, Op: OpCitations},
		}
	default:
		return Decision{}, fmt.Errorf("unknown operation %q", fields[1])
	}
	return Decision{Action: ActionExpand, Choices: choices}, nil
}
