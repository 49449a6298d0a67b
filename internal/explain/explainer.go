// Package explain generates per-match "why this matches" rationales.
// Explanation is a non-essential enrichment: the explainer never fails
// outward, so retrieval stays usable when the completion capability is
// down.
package explain

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
)

const systemPrompt = `You review search results for a sales-lead query over a startup directory. For each company you receive (id, name, description, tags), write exactly one sentence explaining why it does or does not fit the query. Weak matches get an honest negative sentence, never an omission. Respond with a JSON object of the form {"explanations": {"<id>": "<sentence>", ...}} covering every id you were given.`

// Explainer produces best-effort explanations for a batch of matches.
type Explainer struct {
	completer domain.Completer
	logger    *zap.Logger
}

// New creates an explainer backed by a structured completion capability.
func New(completer domain.Completer, logger *zap.Logger) *Explainer {
	return &Explainer{completer: completer, logger: logger}
}

// matchContext is the compact per-match view sent to the model. Only
// non-personal fields: contact data never reaches the explanation prompt.
type matchContext struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Explain returns a map from match id to a one-sentence rationale. All
// matches go out in a single batched call. Any failure degrades to an
// empty map; zero matches short-circuits without a network call.
func (e *Explainer) Explain(
	ctx context.Context, originalQuery string, matches []domain.Match,
) map[string]string {
	if len(matches) == 0 {
		return map[string]string{}
	}

	contexts := make([]matchContext, len(matches))
	for i, m := range matches {
		contexts[i] = buildContext(m)
	}

	payload, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Companies []matchContext `json:"companies"`
	}{Query: originalQuery, Companies: contexts})
	if err != nil {
		e.logger.Warn("marshal explanation context", zap.Error(err))
		return map[string]string{}
	}

	raw, err := e.completer.CompleteJSON(ctx, systemPrompt, string(payload))
	if err != nil {
		e.logger.Warn("explanation generation failed", zap.Error(err))
		return map[string]string{}
	}

	var out struct {
		Explanations map[string]string `json:"explanations"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		e.logger.Warn("malformed explanation output", zap.Error(err))
		return map[string]string{}
	}
	if out.Explanations == nil {
		return map[string]string{}
	}
	return out.Explanations
}

// buildContext projects a match onto the prompt-safe field subset.
func buildContext(m domain.Match) matchContext {
	mc := matchContext{ID: m.ID}

	if name, ok := m.Fields["company_name"].(string); ok {
		mc.Name = name
	}
	if desc, ok := m.Fields["short_description"].(string); ok {
		mc.Description = desc
	} else if desc, ok := m.Fields["long_description"].(string); ok {
		mc.Description = desc
	}
	mc.Tags = stringSlice(m.Fields["tags"])

	return mc
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
