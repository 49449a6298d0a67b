package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
)

type mockCompleter struct {
	response []byte
	err      error
	called   bool
	lastUser string
}

func (m *mockCompleter) CompleteJSON(_ context.Context, _, user string) ([]byte, error) {
	m.called = true
	m.lastUser = user
	return m.response, m.err
}

func sampleMatches() []domain.Match {
	return []domain.Match{
		{ID: "1", Fields: map[string]any{
			"company_name":      "Acme",
			"short_description": "Payments for robots",
			"tags":              []string{"Fintech"},
			"primary_email":     "founder@acme.example",
		}},
		{ID: "2", Fields: map[string]any{
			"company_name":     "Beta",
			"long_description": "A longer pitch about logistics software",
		}},
	}
}

func TestExplainZeroMatchesSkipsCall(t *testing.T) {
	completer := &mockCompleter{}
	e := New(completer, zap.NewNop())

	got := e.Explain(context.Background(), "anything", nil)
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
	if completer.called {
		t.Error("zero matches must not trigger a completion call")
	}
}

func TestExplainParsesBatchedResponse(t *testing.T) {
	completer := &mockCompleter{response: []byte(
		`{"explanations": {"1": "Direct fintech fit.", "2": "Logistics, not fintech."}}`,
	)}
	e := New(completer, zap.NewNop())

	got := e.Explain(context.Background(), "fintech startups", sampleMatches())
	if got["1"] != "Direct fintech fit." {
		t.Errorf("explanation[1] = %q", got["1"])
	}
	if got["2"] != "Logistics, not fintech." {
		t.Errorf("explanation[2] = %q", got["2"])
	}
	if !completer.called {
		t.Fatal("expected one completion call")
	}
}

func TestExplainFailureDegradesToEmptyMap(t *testing.T) {
	tests := []struct {
		name      string
		completer *mockCompleter
	}{
		{"provider error", &mockCompleter{err: errors.New("timeout")}},
		{"malformed output", &mockCompleter{response: []byte("not json")}},
		{"missing explanations key", &mockCompleter{response: []byte(`{"unrelated": true}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.completer, zap.NewNop())
			got := e.Explain(context.Background(), "q", sampleMatches())
			if got == nil {
				t.Fatal("must return a non-nil map")
			}
			if len(got) != 0 {
				t.Errorf("got %v, want empty map", got)
			}
		})
	}
}

func TestExplainPromptContext(t *testing.T) {
	completer := &mockCompleter{response: []byte(`{"explanations": {}}`)}
	e := New(completer, zap.NewNop())

	e.Explain(context.Background(), "fintech startups", sampleMatches())

	if !strings.Contains(completer.lastUser, "fintech startups") {
		t.Error("payload must carry the original query")
	}
	if !strings.Contains(completer.lastUser, "Acme") {
		t.Error("payload must carry the company name")
	}
	if !strings.Contains(completer.lastUser, "A longer pitch") {
		t.Error("payload must fall back to the long description")
	}
	if strings.Contains(completer.lastUser, "founder@acme.example") {
		t.Error("contact data must never reach the explanation prompt")
	}
}
