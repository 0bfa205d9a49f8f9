// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scipathbench/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OracleConfig holds settings for the citation oracle client.
type OracleConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as the mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// OpenCitationsKey enables the OpenCitations reference source for
	// DOI-keyed works when set.
	OpenCitationsKey string `json:"opencitations_key,omitempty" yaml:"opencitations_key,omitempty"`

	// CacheDir is the directory for the persistent response cache database.
	// Empty disables the on-disk layer; the in-memory layer is always on.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// MaxNeighbors caps the number of neighbors returned per oracle call
	// (default 25).
	MaxNeighbors int `json:"max_neighbors" yaml:"max_neighbors"`

	// MaxRetries bounds retry attempts on rate-limited requests (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerSecond throttles outbound API calls (default 8).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// DeciderConfig holds settings for model-backed decision makers.
type DeciderConfig struct {
	// Name selects the decision maker: greedy, human, openrouter, anthropic.
	Name string `json:"name" yaml:"name"`

	// Model is the model identifier for LLM-backed deciders
	// (e.g. "mistralai/ministral-8b" or "claude-sonnet-4-5").
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey authenticates against the model provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint. For the openrouter decider
	// this defaults to https://openrouter.ai/api/v1.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// BenchmarkConfig holds settings for a benchmark execution.
type BenchmarkConfig struct {
	// StepBudget is the maximum number of billable oracle calls per run (default 40).
	StepBudget int `json:"step_budget" yaml:"step_budget"`

	// MaxTurns bounds the number of decision turns per run (default 15).
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// BFSMaxDepth bounds the ground-truth search depth per side (default 6).
	BFSMaxDepth int `json:"bfs_max_depth" yaml:"bfs_max_depth"`

	// TasksFile is the YAML benchmark task file.
	TasksFile string `json:"tasks_file" yaml:"tasks_file"`

	// ResultsDir is the directory for the run results database.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

// Normalize fills zero fields with defaults.
func (c *OracleConfig) Normalize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "scipathbench/0.1"
	}
	if c.MaxNeighbors <= 0 {
		c.MaxNeighbors = 25
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 8
	}
}

// Normalize fills zero fields with defaults.
func (c *BenchmarkConfig) Normalize() {
	if c.StepBudget <= 0 {
		c.StepBudget = 40
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 15
	}
	if c.BFSMaxDepth <= 0 {
		c.BFSMaxDepth = 6
	}
}
