// Package company exposes the pipeline operations over HTTP.
package company

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bundesanzeiger/pkg/models"
)

// Pipeline is the operation surface the handlers need.
type Pipeline interface {
	Search(ctx context.Context, companyName string) *models.SearchResult
	Analyze(ctx context.Context, companyName string) *models.AnalyzeResult
}

// requestTimeout bounds one pipeline run. Analyze walks a bootstrap,
// a detail fetch, possibly a CAPTCHA round trip and an LLM call.
const requestTimeout = 5 * time.Minute

type Handler struct {
	pipeline Pipeline
	log      *slog.Logger
}

func NewHandler(pipeline Pipeline, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{pipeline: pipeline, log: log}
}

// Routes mounts the API on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/search", h.handleSearch)
	r.Get("/api/analyze", h.handleAnalyze)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch handles GET /api/search?company=<name>.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	if company == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'company' is required"})
		return
	}

	result := h.pipeline.Search(r.Context(), company)
	h.log.Info("search handled", "company", company, "found", result.Found, "cached", result.IsCached)

	status := http.StatusOK
	if result.Error != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

// handleAnalyze handles GET /api/analyze?company=<name>.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	if company == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'company' is required"})
		return
	}

	result := h.pipeline.Analyze(r.Context(), company)
	h.log.Info("analyze handled", "company", company, "found", result.Found, "cached", result.IsCached)

	status := http.StatusOK
	if result.Error != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
