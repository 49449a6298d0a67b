// Package chi exposes the lead search pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
	healthuc "github.com/leadex-cloud/leadex/internal/usecase/health"
	leaduc "github.com/leadex-cloud/leadex/internal/usecase/lead"
)

// errorHandler tries to handle a pipeline error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers for the lead search API.
type Server struct {
	leads         *leaduc.Service
	health        *healthuc.Service
	defaultTopK   int
	maxTopK       int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	leads *leaduc.Service,
	health *healthuc.Service,
	defaultTopK, maxTopK int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		leads:       leads,
		health:      health,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
		logger:      logger,
	}
	// Order matters: first matching sentinel wins. Provider-facing stages
	// map to 502 so a caller can distinguish "retry later" from "fix the
	// request".
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "invalid query"),
		sentinelHandler(domain.ErrExtraction, http.StatusBadGateway, "query extraction failed"),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, "query embedding failed"),
		sentinelHandler(domain.ErrIndexQuery, http.StatusBadGateway, "index query failed"),
		sentinelHandler(domain.ErrCompletionProvider, http.StatusBadGateway, "completion provider error"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding provider error"),
	}
	return s
}

// Register mounts all routes onto the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/v1/leads/search", s.SearchLeads)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// searchRequest is the inbound search body. Query is a pointer so a
// missing key is distinguishable from an empty string.
type searchRequest struct {
	Query *string `json:"query"`
	TopK  *int    `json:"top_k"`
}

// SearchLeads handles POST /api/v1/leads/search.
func (s *Server) SearchLeads(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Query == nil || *req.Query == "" {
		writeError(w, http.StatusBadRequest, "query must be a non-empty string", "")
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
		if topK <= 0 {
			writeError(w, http.StatusBadRequest, "top_k must be positive", "")
			return
		}
		if topK > s.maxTopK {
			topK = s.maxTopK
		}
	}

	resp, err := s.leads.Search(r.Context(), *req.Query, topK)
	if err != nil {
		s.handlePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ErrorResponse is the structured error body. Details carries the
// underlying cause string when one is available; never a stack trace.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handlePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	for _, handle := range s.errorHandlers {
		if handle(w, err) {
			return
		}
	}
	s.logger.Error("unhandled pipeline error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func sentinelHandler(sentinel error, status int, summary string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, summary, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, summary, details string) {
	writeJSON(w, status, ErrorResponse{Error: summary, Details: details})
}
