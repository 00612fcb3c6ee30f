// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/scheduler"
	"github.com/helix-ai/backend/internal/service"
	"github.com/helix-ai/backend/internal/store"
	"github.com/helix-ai/backend/internal/tutor"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store       store.Store
	auth        *auth.Service
	submissions *service.SubmissionService
	aggregator  *analytics.Aggregator
	tutor       *tutor.Tutor
	digest      *scheduler.Scheduler
	questions   *question.Catalog
	cases       *clinicalcase.Catalog
	logger      *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	s store.Store,
	authSvc *auth.Service,
	submissions *service.SubmissionService,
	aggregator *analytics.Aggregator,
	tutorSvc *tutor.Tutor,
	digest *scheduler.Scheduler,
	questions *question.Catalog,
	cases *clinicalcase.Catalog,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:       s,
		auth:        authSvc,
		submissions: submissions,
		aggregator:  aggregator,
		tutor:       tutorSvc,
		digest:      digest,
		questions:   questions,
		cases:       cases,
		logger:      logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body so clients always get the same
// shape back.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into v. On failure it writes a 400
// and returns false (caller should return).
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

type validator interface {
	Validate() error
}

// decodeAndValidate decodes the body into v and, when v implements
// Validate, runs it. Writes a 400 and returns false on either failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return false
		}
	}
	return true
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, entity+" not found")
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	respondError(w, http.StatusInternalServerError, "internal error")
	return true
}
