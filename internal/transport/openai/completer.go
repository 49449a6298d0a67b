package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/metrics"
)

// Temperature near zero keeps extraction close to deterministic. A literal
// zero would be dropped by the client's omitempty encoding and fall back to
// the provider default.
const completionTemperature = 1e-5

// Completer issues JSON-constrained chat completions against an
// OpenAI-compatible API. Implements domain.Completer.
type Completer struct {
	client  *openai.Client
	model   string
	op      string
	timeout time.Duration
	logger  *zap.Logger
}

// CompleterConfig holds the chat completion provider settings.
type CompleterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Op labels metrics per call site ("extract", "explain").
	Op string
	// Timeout bounds each completion call. Zero disables the bound.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCompleter creates an OpenAI-compatible structured completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		op:      cfg.Op,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// CompleteJSON sends one chat completion constrained to JSON output and
// returns the raw document bytes with markdown fences stripped.
func (c *Completer) CompleteJSON(ctx context.Context, system, user string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: completionTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, c.op, "error").Inc()
		return nil, parseAPIError("completion", err, domain.ErrCompletionProvider)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, c.op, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrCompletionProvider)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.model, c.op, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.model, c.op).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.
			WithLabelValues(c.model, c.op, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokensTotal.
			WithLabelValues(c.model, c.op, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	return []byte(stripFences(resp.Choices[0].Message.Content)), nil
}

// stripFences removes markdown code fences some models wrap around JSON
// output even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
