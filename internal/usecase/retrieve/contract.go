package retrieve

import (
	"context"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/domain/filter"
)

// Extractor decomposes raw query text into a validated extraction.
type Extractor interface {
	Extract(ctx context.Context, rawQuery string) (domain.Extraction, error)
}

// Embedder vectorizes the semantic query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index runs one filtered nearest-neighbor query against the company index.
type Index interface {
	Search(ctx context.Context, vector []float32, flt filter.Filter, topK int) ([]domain.Match, error)
}
