// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeFreeText IdentifierType = iota
	TypeWorkID
	TypeDOI
)

func (t IdentifierType) String() string {
	switch t {
	case TypeWorkID:
		return "work_id"
	case TypeDOI:
		return "doi"
	default:
		return "free_text"
	}
}

// workIDPattern matches OpenAlex work IDs: "W2127774231", "w2127774231".
var workIDPattern = regexp.MustCompile(`^[Ww]\d+$`)

// doiPattern matches bare DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// Classify determines the identifier type and returns the normalized form:
// work IDs are uppercased and stripped of any URL prefix, DOIs lose their
// "doi:" or "https://doi.org/" prefix, and anything else is free text.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if norm := NormalizeWorkID(identifier); workIDPattern.MatchString(norm) {
		return TypeWorkID, strings.ToUpper(norm)
	}

	doi := identifier
	lower := strings.ToLower(doi)
	switch {
	case strings.HasPrefix(lower, "doi:"):
		doi = doi[len("doi:"):]
	case strings.HasPrefix(lower, "https://doi.org/"):
		doi = doi[len("https://doi.org/"):]
	}
	if doiPattern.MatchString(doi) {
		return TypeDOI, doi
	}

	return TypeFreeText, identifier
}

// NormalizeWorkID reduces a work identifier to its bare form. OpenAlex
// returns IDs as full URLs ("https://openalex.org/W123"); the last non-empty
// path segment is the ID proper.
func NormalizeWorkID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return id
	}
	parts := strings.Split(id, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return id
}
