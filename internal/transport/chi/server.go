// Package chi is the HTTP edge of the search service.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/domain"
	"github.com/treadline/tiredex/internal/domain/catalog"
	healthuc "github.com/treadline/tiredex/internal/usecase/health"
)

// Error response codes.
const (
	CodeBadRequest         = "bad_request"
	CodeValidationFailed   = "validation_failed"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeCatalogInvalid     = "catalog_invalid"
	CodeInternalError      = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchService answers free-text queries.
type SearchService interface {
	Search(ctx context.Context, query string) ([]catalog.Item, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search pipeline over HTTP.
type Server struct {
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCatalogNotFound, http.StatusServiceUnavailable, CodeCatalogUnavailable),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusInternalServerError, CodeCatalogInvalid),
	}
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// searchRequest is the JSON search request body.
type searchRequest struct {
	Query string `json:"query"`
}

// searchResponse is the JSON search response body.
type searchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []catalog.Item `json:"results"`
}

// handleSearch handles POST /search. Accepts JSON {"query": ...} or a form
// post with a query field.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, err := readQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	query = strings.TrimSpace(query)
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	results, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if results == nil {
		results = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func readQuery(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.PostFormValue("query"), nil
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", err
	}
	return req.Query, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCatalogNotFound,
		domain.ErrInvalidSchema,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
