// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperKind classifies a node in the citation graph. Deleted and unknown
// works are kept as sentinel nodes so a traversal can record them as dead
// ends instead of crashing on them.
type PaperKind string

const (
	KindPaper   PaperKind = "paper"
	KindDeleted PaperKind = "deleted"
	KindUnknown PaperKind = "unknown"
)

// Paper holds the metadata for one work in the citation graph. A Paper is
// immutable once fetched from the oracle.
type Paper struct {
	// ID is the stable external identifier (an OpenAlex work ID, e.g. "W2127774231").
	ID string `json:"id" yaml:"id"`

	// Title is the work title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Concepts lists the top concept display names for the work.
	Concepts []string `json:"concepts,omitempty" yaml:"concepts,omitempty"`

	// DOI is the bare DOI (no https://doi.org/ prefix), if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Kind marks whether this is a real paper or a deleted/unknown sentinel.
	Kind PaperKind `json:"kind" yaml:"kind"`
}

// IsExpandable reports whether the paper can contribute further edges.
// Deleted works are recorded in the graph but never expanded.
func (p Paper) IsExpandable() bool {
	return p.Kind != KindDeleted
}
