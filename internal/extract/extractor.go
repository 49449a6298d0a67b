// Package extract turns free-text lead queries into schema-conformant
// extractions via a JSON-constrained completion.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
)

// Extractor is the query-understanding stage of the pipeline.
type Extractor struct {
	completer domain.Completer
	logger    *zap.Logger
}

// New creates an extractor backed by a structured completion capability.
func New(completer domain.Completer, logger *zap.Logger) *Extractor {
	return &Extractor{completer: completer, logger: logger}
}

// Extract decomposes rawQuery into structured filters plus the semantic
// residue. The completion boundary is a fallible parse step: output is
// decoded and validated against the filter schema before it is trusted, so
// a well-formed-but-invalid object fails instead of being coerced.
func (e *Extractor) Extract(ctx context.Context, rawQuery string) (domain.Extraction, error) {
	trimmed := strings.TrimSpace(rawQuery)
	if trimmed == "" {
		return domain.Extraction{}, fmt.Errorf("%w: empty query text", domain.ErrValidation)
	}

	raw, err := e.completer.CompleteJSON(ctx, systemPrompt, trimmed)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	var ex domain.Extraction
	if err := json.Unmarshal(raw, &ex); err != nil {
		e.logger.Warn("malformed extraction output",
			zap.String("response", truncate(string(raw), 512)),
			zap.Error(err),
		)
		return domain.Extraction{}, fmt.Errorf("%w: decode completion: %w", domain.ErrExtraction, err)
	}

	if err := ex.Validate(); err != nil {
		e.logger.Warn("schema-invalid extraction", zap.Error(err))
		return domain.Extraction{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	return ex, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
