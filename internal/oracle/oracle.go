// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle is the citation-data boundary: a cached, rate-limited client
// over the OpenAlex API (with an optional OpenCitations source for DOI-keyed
// reference lists) plus per-run step metering. It is the only source of edges
// and metadata for ground-truth computation and live traversal.
// See docs/ARCHITECTURE.md § Citation Oracle.
package oracle

import (
	"context"
	"errors"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// Oracle operations, as recorded in run transcripts and cache keys.
const (
	OpReferences = "references"
	OpCitations  = "citations"
	OpSearch     = "search"
)

// ErrNotFound indicates an identifier or query that resolves to no work.
var ErrNotFound = errors.New("work not found")

// ErrUnavailable indicates a transient failure that outlived its retries.
// Callers treat the affected candidate as yielding no new neighbors.
var ErrUnavailable = errors.New("oracle unavailable")

// Source answers citation queries. The boolean result reports whether the
// answer came from cache: a cache hit costs zero benchmark steps.
//
// GetReferences returns the works the given work cites; GetCitations returns
// the works citing it. SearchPaper resolves a free-text query, DOI, or work
// ID to a single paper.
type Source interface {
	GetReferences(ctx context.Context, id string) ([]types.Paper, bool, error)
	GetCitations(ctx context.Context, id string) ([]types.Paper, bool, error)
	SearchPaper(ctx context.Context, query string) (types.Paper, bool, error)
}
