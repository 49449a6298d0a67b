package extract

import (
	"context"
	"errors"
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

func TestExtractParsesValidOutput(t *testing.T) {
	completer := &mockCompleter{response: []byte(`{
		"semantic_query": "AI startups in healthcare",
		"batch": "W22",
		"status": "Active",
		"tags": ["AI", "Healthcare"]
	}`)}
	ex := New(completer, zap.NewNop())

	got, err := ex.Extract(context.Background(), "active W22 AI startups in healthcare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.SemanticQuery != "AI startups in healthcare" {
		t.Errorf("semantic_query = %q", got.SemanticQuery)
	}
	if got.Batch == nil || *got.Batch != "W22" {
		t.Errorf("batch = %v", got.Batch)
	}
	if got.Status == nil || *got.Status != domain.StatusActive {
		t.Errorf("status = %v", got.Status)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestExtractEmptyQuery(t *testing.T) {
	completer := &mockCompleter{}
	ex := New(completer, zap.NewNop())

	_, err := ex.Extract(context.Background(), "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if completer.called {
		t.Error("empty query must not reach the completion provider")
	}
}

func TestExtractCompleterFailure(t *testing.T) {
	completer := &mockCompleter{err: errors.New("rate limited")}
	ex := New(completer, zap.NewNop())

	_, err := ex.Extract(context.Background(), "fintech startups")
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	completer := &mockCompleter{response: []byte(`not json at all`)}
	ex := New(completer, zap.NewNop())

	_, err := ex.Extract(context.Background(), "fintech startups")
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}

func TestExtractSchemaInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing semantic query", `{"batch": "W22"}`},
		{"unknown status", `{"semantic_query": "x", "status": "Closed"}`},
		{"out of range year", `{"semantic_query": "x", "year_founded": 1850}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{response: []byte(tt.response)}
			ex := New(completer, zap.NewNop())

			_, err := ex.Extract(context.Background(), "anything")
			if !errors.Is(err, domain.ErrExtraction) {
				t.Errorf("err = %v, want ErrExtraction", err)
			}
		})
	}
}

func TestExtractTrimsQueryText(t *testing.T) {
	completer := &mockCompleter{response: []byte(`{"semantic_query": "fintech"}`)}
	ex := New(completer, zap.NewNop())

	if _, err := ex.Extract(context.Background(), "  fintech startups  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completer.lastUser != "fintech startups" {
		t.Errorf("user message = %q, want trimmed text", completer.lastUser)
	}
}
