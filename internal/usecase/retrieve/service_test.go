package retrieve

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/domain/filter"
)

// --- Mocks ---

type mockExtractor struct {
	extraction domain.Extraction
	err        error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (domain.Extraction, error) {
	return m.extraction, m.err
}

type mockEmbedder struct {
	result   domain.EmbeddingResult
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	return m.result, m.err
}

type mockIndex struct {
	matches    []domain.Match
	err        error
	lastVector []float32
	lastFilter filter.Filter
	lastTopK   int
	called     bool
}

func (m *mockIndex) Search(
	_ context.Context, vector []float32, flt filter.Filter, topK int,
) ([]domain.Match, error) {
	m.called = true
	m.lastVector = vector
	m.lastFilter = flt
	m.lastTopK = topK
	return m.matches, m.err
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func TestRetrieveHappyPath(t *testing.T) {
	ex := domain.Extraction{
		SemanticQuery: "payments infrastructure",
		Batch:         strPtr("W21"),
		Tags:          []string{"Fintech"},
	}
	extractor := &mockExtractor{extraction: ex}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	index := &mockIndex{matches: []domain.Match{{ID: "1", Score: 0.9}}}

	svc := New(extractor, embedder, index)
	res, err := svc.Retrieve(context.Background(), "W21 fintech payments infrastructure", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embedder.lastText != "payments infrastructure" {
		t.Errorf("embedded text = %q, want the semantic query", embedder.lastText)
	}
	if !reflect.DeepEqual(index.lastVector, []float32{0.1, 0.2}) {
		t.Errorf("index vector = %v", index.lastVector)
	}
	if index.lastTopK != 10 {
		t.Errorf("topK = %d", index.lastTopK)
	}

	wantFilter := filter.Compile(ex)
	if !reflect.DeepEqual(index.lastFilter, wantFilter) {
		t.Errorf("filter = %v, want %v", index.lastFilter, wantFilter)
	}
	if !reflect.DeepEqual(res.Filter, wantFilter) {
		t.Errorf("result filter = %v", res.Filter)
	}
	if !reflect.DeepEqual(res.Extraction, ex) {
		t.Errorf("result extraction = %v", res.Extraction)
	}
	if len(res.Matches) != 1 || res.Matches[0].ID != "1" {
		t.Errorf("matches = %v", res.Matches)
	}
}

func TestRetrieveExtractionFailureAborts(t *testing.T) {
	extractor := &mockExtractor{err: domain.ErrExtraction}
	embedder := &mockEmbedder{}
	index := &mockIndex{}

	svc := New(extractor, embedder, index)
	_, err := svc.Retrieve(context.Background(), "query", 10)
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	if !strings.Contains(err.Error(), "extract query") {
		t.Errorf("error must name the failing stage, got %q", err.Error())
	}
	if index.called {
		t.Error("index must not be queried after extraction failure")
	}
}

func TestRetrieveEmbeddingFailureAborts(t *testing.T) {
	extractor := &mockExtractor{extraction: domain.Extraction{SemanticQuery: "x"}}
	embedder := &mockEmbedder{err: domain.ErrEmbedding}
	index := &mockIndex{}

	svc := New(extractor, embedder, index)
	_, err := svc.Retrieve(context.Background(), "query", 10)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if !strings.Contains(err.Error(), "embed query") {
		t.Errorf("error must name the failing stage, got %q", err.Error())
	}
	if index.called {
		t.Error("index must not be queried after embedding failure")
	}
}

func TestRetrieveIndexFailureAborts(t *testing.T) {
	extractor := &mockExtractor{extraction: domain.Extraction{SemanticQuery: "x"}}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	index := &mockIndex{err: domain.ErrIndexQuery}

	svc := New(extractor, embedder, index)
	_, err := svc.Retrieve(context.Background(), "query", 10)
	if !errors.Is(err, domain.ErrIndexQuery) {
		t.Fatalf("err = %v, want ErrIndexQuery", err)
	}
	if !strings.Contains(err.Error(), "index query") {
		t.Errorf("error must name the failing stage, got %q", err.Error())
	}
}

func TestRetrieveNilMatchesBecomeEmptySlice(t *testing.T) {
	extractor := &mockExtractor{extraction: domain.Extraction{SemanticQuery: "x"}}
	embedder := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	index := &mockIndex{matches: nil}

	svc := New(extractor, embedder, index)
	res, err := svc.Retrieve(context.Background(), "query", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matches == nil {
		t.Error("zero hits must yield an empty slice, not nil")
	}
}
