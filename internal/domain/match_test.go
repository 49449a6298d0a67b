package domain

import (
	"encoding/json"
	"testing"
)

func TestMatchMarshalFlattensMetadata(t *testing.T) {
	m := Match{
		ID:    "123",
		Score: 0.87,
		Fields: map[string]any{
			"company_name": "Acme",
			"team_size":    float64(12),
			"tags":         []string{"AI", "B2B"},
		},
		AIReason: "Strong fit for the query.",
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["id"] != "123" {
		t.Errorf("id = %v, want 123", got["id"])
	}
	if got["score"] != 0.87 {
		t.Errorf("score = %v, want 0.87", got["score"])
	}
	if got["ai_reason"] != "Strong fit for the query." {
		t.Errorf("ai_reason = %v", got["ai_reason"])
	}
	if got["company_name"] != "Acme" {
		t.Errorf("company_name = %v, metadata should flatten to top level", got["company_name"])
	}
	if got["team_size"] != float64(12) {
		t.Errorf("team_size = %v", got["team_size"])
	}
	if _, ok := got["Fields"]; ok {
		t.Error("metadata must not appear under a nested Fields key")
	}
}

func TestMatchMarshalEmptyFields(t *testing.T) {
	m := Match{ID: "x", Score: 1, AIReason: NoExplanation}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected exactly id/score/ai_reason, got %v", got)
	}
	if got["ai_reason"] != NoExplanation {
		t.Errorf("ai_reason = %v, want fallback text", got["ai_reason"])
	}
}
