package domain

import (
	"fmt"
	"strings"
)

// Status is the company lifecycle status as tracked by the directory.
type Status string

// Known status values.
const (
	StatusActive   Status = "Active"
	StatusAcquired Status = "Acquired"
	StatusDead     Status = "Dead"
	StatusPublic   Status = "Public"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusAcquired, StatusDead, StatusPublic:
		return true
	}
	return false
}

// Extraction is the structured decomposition of a user query: a set of
// optional exact-match fields plus the free-text semantic residue.
// Absence of a field means "no constraint", never a wildcard.
//
// Structured fields are additive extracts -- capturing a fragment in a
// field never removes it from SemanticQuery. The extractor prompt enforces
// this; Validate only checks what is mechanically checkable.
type Extraction struct {
	SemanticQuery string   `json:"semantic_query"`
	CompanyName   *string  `json:"company_name,omitempty"`
	Batch         *string  `json:"batch,omitempty"`
	Status        *Status  `json:"status,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Location      *string  `json:"location,omitempty"`
	Country       *string  `json:"country,omitempty"`
	YearFounded   *int     `json:"year_founded,omitempty"`
	NumFounders   *int     `json:"num_founders,omitempty"`
	TeamSize      *int     `json:"team_size,omitempty"`
}

// Validate checks the extraction against the filter schema. A completion
// that is well-formed JSON but schema-invalid must be rejected here, not
// coerced into a usable value.
func (e *Extraction) Validate() error {
	if strings.TrimSpace(e.SemanticQuery) == "" {
		return fmt.Errorf("semantic_query is required")
	}
	if e.Status != nil && !e.Status.IsValid() {
		return fmt.Errorf("unknown status %q", *e.Status)
	}
	for _, tag := range e.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not contain empty entries")
		}
	}
	if e.YearFounded != nil && (*e.YearFounded < 1900 || *e.YearFounded > 2100) {
		return fmt.Errorf("year_founded %d out of range", *e.YearFounded)
	}
	if e.NumFounders != nil && *e.NumFounders < 0 {
		return fmt.Errorf("num_founders must not be negative")
	}
	if e.TeamSize != nil && *e.TeamSize < 0 {
		return fmt.Errorf("team_size must not be negative")
	}
	return nil
}
