package domain

import "encoding/json"

// NoExplanation is the fixed fallback attached to a match when explanation
// generation failed or produced no entry for its id.
const NoExplanation = "No explanation available."

// Match is a single retrieval result: similarity score plus the full stored
// metadata for one company record. Fields is an open passthrough map -- the
// indexed metadata evolves independently of this pipeline, so no field is
// renamed or dropped during normalization.
type Match struct {
	ID       string
	Score    float64
	Fields   map[string]any
	AIReason string
}

// MarshalJSON flattens the metadata map with id, score, and ai_reason into
// a single object. Metadata keys never collide with the reserved three:
// the repository strips internal fields before a Match is built.
func (m Match) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(m.Fields)+3)
	for k, v := range m.Fields {
		flat[k] = v
	}
	flat["id"] = m.ID
	flat["score"] = m.Score
	flat["ai_reason"] = m.AIReason
	return json.Marshal(flat)
}
