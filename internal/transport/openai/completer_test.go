package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
)

// stallingProvider blocks every request until the client gives up.
func stallingProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(30 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"fence with whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompleteJSONBoundsItsOwnWait(t *testing.T) {
	srv := stallingProvider(t)
	c := NewCompleter(&CompleterConfig{
		APIKey:  "test",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
		Op:      "extract",
		Timeout: 50 * time.Millisecond,
		Logger:  zap.NewNop(),
	})

	start := time.Now()
	_, err := c.CompleteJSON(context.Background(), "system", "user")
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrCompletionProvider) {
		t.Fatalf("err = %v, want ErrCompletionProvider", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("call took %v, the configured deadline did not apply", elapsed)
	}
}

func TestParseAPIError(t *testing.T) {
	reqErr := &openai.RequestError{
		HTTPStatusCode: 429,
		Body:           []byte(`{"detail": "rate limit exceeded"}`),
		Err:            errors.New("429"),
	}
	err := parseAPIError("completion", reqErr, domain.ErrCompletionProvider)
	if !errors.Is(err, domain.ErrCompletionProvider) {
		t.Errorf("err = %v, want ErrCompletionProvider", err)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("err %q missing provider detail", err.Error())
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("err %q missing status code", err.Error())
	}

	apiErr := &openai.APIError{HTTPStatusCode: 500, Message: "upstream exploded"}
	err = parseAPIError("embedding", apiErr, domain.ErrEmbeddingProvider)
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Errorf("err = %v, want ErrEmbeddingProvider", err)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("err %q missing message", err.Error())
	}

	plain := errors.New("dial tcp: refused")
	err = parseAPIError("completion", plain, domain.ErrCompletionProvider)
	if !errors.Is(err, domain.ErrCompletionProvider) {
		t.Errorf("err = %v, want ErrCompletionProvider", err)
	}
}
