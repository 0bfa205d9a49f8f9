// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildPrompt renders the decision request as the planner prompt shared by
// the model-backed makers. The exploration summary is bounded: candidates
// are already capped by the engine and the path summary holds titles only.
func buildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are a research assistant finding the shortest citation path between two academic papers.\n")
	sb.WriteString("Citation links are undirected. You are running a bidirectional search: one frontier grows from the START paper, one from the END paper.\n\n")

	fmt.Fprintf(&sb, "START: %q (%d)\n", req.Start.Title, req.Start.Year)
	fmt.Fprintf(&sb, "END: %q (%d)\n", req.Target.Title, req.Target.Year)
	fmt.Fprintf(&sb, "REMAINING BUDGET: %d oracle calls\n", req.RemainingBudget)

	if len(req.PathSummary) > 0 {
		fmt.Fprintf(&sb, "EXPANDED SO FAR: %s\n", strings.Join(req.PathSummary, " -> "))
	}

	sb.WriteString("\nCANDIDATES (id | frontier | depth | year | title | concepts):\n")
	for _, c := range sortCandidates(req.Candidates) {
		fmt.Fprintf(&sb, "%s | %s | %d | %d | %s | %s\n",
			c.ID, c.Side, c.Depth, c.Year, c.Title, strings.Join(c.Concepts, ", "))
	}

	sb.WriteString("\nPick the most promising candidate(s) to expand next so the two frontiers connect. ")
	sb.WriteString("Consider topic overlap and publication dates; a paper published between the start and end dates is often a good bridge.\n")
	sb.WriteString("Each choice names an operation: \"references\" follows what the paper cites, \"citations\" follows papers citing it.\n\n")
	sb.WriteString("Respond with ONLY a JSON object, no markdown. Either:\n")
	sb.WriteString(`{"action":"expand","choices":[{"id":"W12345","side":"start","op":"references"}]}` + "\n")
	sb.WriteString("or, if no candidate can plausibly lead anywhere:\n")
	sb.WriteString(`{"action":"give_up"}` + "\n")

	if req.Note != "" {
		fmt.Fprintf(&sb, "\nNOTE: your previous response was rejected: %s\n", req.Note)
	}
	return sb.String()
}

// parseDecision extracts a schema-conforming decision from model output.
// Fenced or embedded JSON is tolerated; anything that fails to parse or
// validate is reported as ErrMalformed.
func parseDecision(text string, req Request) (Decision, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var d Decision
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		// Fall back to the outermost brace pair embedded in prose.
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return Decision{}, fmt.Errorf("%w: no JSON object in response", ErrMalformed)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &d); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if err := Validate(d, req); err != nil {
		return Decision{}, err
	}
	return d, nil
}
