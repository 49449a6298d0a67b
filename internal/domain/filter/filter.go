// Package filter compiles the structured fields of an extraction into the
// predicate form understood by the vector index.
package filter

import (
	"encoding/json"
	"slices"

	"github.com/leadex-cloud/leadex/internal/domain"
)

// Predicate is one compiled constraint on a metadata field. Exactly two
// shapes exist: equals-scalar and member-of-set.
type Predicate struct {
	equals any
	anyOf  []string
}

// Equals creates an exact-match predicate for a scalar value.
func Equals(v any) Predicate {
	return Predicate{equals: v}
}

// AnyOf creates a set-membership predicate: the field matches when it
// overlaps any of the given values.
func AnyOf(values []string) Predicate {
	return Predicate{anyOf: values}
}

// IsAnyOf reports whether this is a set-membership predicate.
func (p Predicate) IsAnyOf() bool { return p.anyOf != nil }

// EqualsValue returns the scalar for an equals predicate.
func (p Predicate) EqualsValue() any { return p.equals }

// AnyOfValues returns the value set for a membership predicate.
func (p Predicate) AnyOfValues() []string { return p.anyOf }

// MarshalJSON renders the predicate as {"equals": v} or {"any_of": [...]}.
func (p Predicate) MarshalJSON() ([]byte, error) {
	if p.anyOf != nil {
		return json.Marshal(struct {
			AnyOf []string `json:"any_of"`
		}{p.anyOf})
	}
	return json.Marshal(struct {
		Equals any `json:"equals"`
	}{p.equals})
}

// Filter maps schema field names to predicates. Built once per request and
// discarded after the index query executes.
type Filter map[string]Predicate

// IsEmpty reports whether no predicates were compiled.
func (f Filter) IsEmpty() bool { return len(f) == 0 }

// Compile converts the structured fields of an extraction into predicates.
// Pure: identical input yields identical output, no failure modes.
//
// Per field: absent value -> omitted; non-empty slice -> membership
// predicate; empty slice -> omitted (an empty array must not mean "match
// nothing"); scalar -> equals predicate. semantic_query and company_name
// are never compiled -- both ride in the semantic text instead.
func Compile(ex domain.Extraction) Filter {
	f := Filter{}
	if ex.Batch != nil {
		f["batch"] = Equals(*ex.Batch)
	}
	if ex.Status != nil {
		f["status"] = Equals(string(*ex.Status))
	}
	if len(ex.Tags) > 0 {
		f["tags"] = AnyOf(slices.Clone(ex.Tags))
	}
	if ex.Location != nil {
		f["location"] = Equals(*ex.Location)
	}
	if ex.Country != nil {
		f["country"] = Equals(*ex.Country)
	}
	if ex.YearFounded != nil {
		f["year_founded"] = Equals(*ex.YearFounded)
	}
	if ex.NumFounders != nil {
		f["num_founders"] = Equals(*ex.NumFounders)
	}
	if ex.TeamSize != nil {
		f["team_size"] = Equals(*ex.TeamSize)
	}
	return f
}
