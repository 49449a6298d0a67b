// Package lead assembles the final search response: retrieval output
// merged with best-effort explanations.
package lead

import (
	"context"
	"time"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/domain/filter"
	"github.com/leadex-cloud/leadex/internal/usecase/retrieve"
)

// Retriever runs the retrieval pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, rawQuery string, topK int) (retrieve.Result, error)
}

// Explainer produces best-effort per-match rationales.
type Explainer interface {
	Explain(ctx context.Context, originalQuery string, matches []domain.Match) map[string]string
}

// Response is the assembled search payload.
type Response struct {
	Success       bool              `json:"success"`
	OriginalQuery string            `json:"original_query"`
	Strategy      domain.Extraction `json:"strategy"`
	Filters       filter.Filter     `json:"filters"`
	MatchCount    int               `json:"match_count"`
	Matches       []domain.Match    `json:"matches"`
}

// Service ties retrieval, explanation, and assembly together.
type Service struct {
	retriever      Retriever
	explainer      Explainer
	explainTimeout time.Duration
}

// New creates a lead search service. explainTimeout bounds the explanation
// call so a hanging enrichment cannot hold a finished retrieval hostage.
func New(retriever Retriever, explainer Explainer, explainTimeout time.Duration) *Service {
	return &Service{
		retriever:      retriever,
		explainer:      explainer,
		explainTimeout: explainTimeout,
	}
}

// Search runs retrieval, attaches explanations, and shapes the response.
// Assembly itself cannot fail: by the time it runs, all fallible work is
// resolved or degraded. Every retrieved match appears in the response and
// match_count always equals len(matches).
func (s *Service) Search(ctx context.Context, query string, topK int) (Response, error) {
	res, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return Response{}, err
	}

	explainCtx, cancel := context.WithTimeout(ctx, s.explainTimeout)
	defer cancel()
	explanations := s.explainer.Explain(explainCtx, query, res.Matches)

	for i := range res.Matches {
		if reason, ok := explanations[res.Matches[i].ID]; ok && reason != "" {
			res.Matches[i].AIReason = reason
		} else {
			res.Matches[i].AIReason = domain.NoExplanation
		}
	}

	return Response{
		Success:       true,
		OriginalQuery: query,
		Strategy:      res.Extraction,
		Filters:       res.Filter,
		MatchCount:    len(res.Matches),
		Matches:       res.Matches,
	}, nil
}
