// Package retrieve coordinates the query-understanding and retrieval
// pipeline: extraction, embedding, filter compilation, and the filtered
// nearest-neighbor query.
package retrieve

import (
	"context"
	"fmt"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/domain/filter"
)

// Result carries everything one retrieval produced: the decomposition, the
// compiled filter actually sent to the index, and the normalized matches.
type Result struct {
	Extraction domain.Extraction
	Filter     filter.Filter
	Matches    []domain.Match
}

// Service is the retrieval orchestrator.
type Service struct {
	extractor Extractor
	embedder  Embedder
	index     Index
}

// New creates a retrieval service.
func New(extractor Extractor, embedder Embedder, index Index) *Service {
	return &Service{extractor: extractor, embedder: embedder, index: index}
}

// Retrieve runs the full pipeline for one query. Any stage failure aborts
// the request with the failing stage named in the error; a silently biased
// result set would be worse than a loud failure. Zero index hits is
// success with an empty match slice.
func (s *Service) Retrieve(ctx context.Context, rawQuery string, topK int) (Result, error) {
	ex, err := s.extractor.Extract(ctx, rawQuery)
	if err != nil {
		return Result{}, fmt.Errorf("extract query: %w", err)
	}

	// Embedding and filter compilation are independent; the embedding call
	// goes out while the filter compiles.
	type embedOut struct {
		res domain.EmbeddingResult
		err error
	}
	embedCh := make(chan embedOut, 1)
	go func() {
		res, err := s.embedder.Embed(ctx, ex.SemanticQuery)
		embedCh <- embedOut{res: res, err: err}
	}()

	flt := filter.Compile(ex)

	emb := <-embedCh
	if emb.err != nil {
		return Result{}, fmt.Errorf("embed query: %w", emb.err)
	}

	matches, err := s.index.Search(ctx, emb.res.Embedding, flt, topK)
	if err != nil {
		return Result{}, fmt.Errorf("index query: %w", err)
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	return Result{Extraction: ex, Filter: flt, Matches: matches}, nil
}
