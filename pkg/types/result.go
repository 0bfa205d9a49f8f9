// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the terminal (or in-progress) state of a traversal run.
type RunStatus string

const (
	StatusInit               RunStatus = "init"
	StatusExpanding          RunStatus = "expanding"
	StatusSuccess            RunStatus = "success"
	StatusFailedBudget       RunStatus = "failed_budget"
	StatusFailedUnresolvable RunStatus = "failed_unresolvable"
)

// Terminal reports whether the status is one of the three end states.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailedBudget, StatusFailedUnresolvable:
		return true
	}
	return false
}

// ScoreRecord holds the four benchmark metrics for one completed run.
// Created once per run, immutable.
type ScoreRecord struct {
	// Success is true iff the run ended in StatusSuccess.
	Success bool `json:"success" yaml:"success"`

	// Optimality is ground-truth length / agent path length for successful
	// runs (at most 1.0), and nil when the run was unsuccessful.
	Optimality *float64 `json:"optimality" yaml:"optimality"`

	// StepsUsed counts billable oracle calls (cache hits and retries excluded).
	StepsUsed int `json:"steps_used" yaml:"steps_used"`

	// Faithful is true iff every adjacent pair in the agent path is an edge
	// the oracle actually returned during the run.
	Faithful bool `json:"faithful" yaml:"faithful"`
}

// OracleCall is one entry in the turn-by-turn audit transcript.
type OracleCall struct {
	// Turn is the engine turn during which the call was issued (0 for setup).
	Turn int `json:"turn" yaml:"turn"`

	// Op is the oracle operation: "references", "citations", or "search".
	Op string `json:"op" yaml:"op"`

	// Key is the work ID or query the call was issued for.
	Key string `json:"key" yaml:"key"`

	// Cached is true when the call was served from cache at zero step cost.
	Cached bool `json:"cached" yaml:"cached"`
}

// RunResult is the full record of one benchmark run, consumed by the results
// store and by external visualization collaborators.
type RunResult struct {
	// ID uniquely identifies the run.
	ID string `json:"id" yaml:"id"`

	// Task is the benchmark task the run attempted.
	Task Task `json:"task" yaml:"task"`

	// Decider names the decision maker variant (e.g. "greedy", "openrouter").
	Decider string `json:"decider" yaml:"decider"`

	// Model is the LLM model identifier for model-backed deciders, else empty.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Status is the terminal state the engine reached.
	Status RunStatus `json:"status" yaml:"status"`

	// AgentPath is the ordered ID sequence the agent found (empty on failure).
	AgentPath []string `json:"agent_path,omitempty" yaml:"agent_path,omitempty"`

	// Turns is the number of decision turns the engine ran.
	Turns int `json:"turns" yaml:"turns"`

	// Score holds the benchmark metrics.
	Score ScoreRecord `json:"score" yaml:"score"`

	// Transcript is the full oracle-call audit log for the run.
	Transcript []OracleCall `json:"transcript,omitempty" yaml:"transcript,omitempty"`

	// StartedAt and Duration record wall-clock timing.
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
