package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/helix-ai/backend/internal/id"
	"github.com/helix-ai/backend/internal/tutor"
)

// ── Request / Response types ────────────────────────────────────────────────

type ChatRequest struct {
	Topic   string          `json:"topic,omitempty" example:"dupla hélice"`
	CaseID  string          `json:"case_id,omitempty" example:"c1_anemia_ferropriva"`
	Message string          `json:"message" example:"Por que as fitas são antiparalelas?"`
	History []tutor.Message `json:"history,omitempty"`
}

func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// chat streams a tutor reply as server-sent events and records the
// exchange for professor review.
// @Summary      Chat with the tutor
// @Description  Streams the reply as text/event-stream data lines. The tutor guides with questions and never hands out exercise answers.
// @Tags         Tutor
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        body  body  ChatRequest  true  "Message"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /chat [post]
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	claims := ClaimsFrom(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	started := false
	startedAt := time.Now()
	reply, err := h.tutor.Stream(r.Context(), req.Topic, req.History, req.Message, func(chunk string) {
		if !started {
			w.WriteHeader(http.StatusOK)
			started = true
		}
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	})
	if err != nil {
		if !started {
			// Headers not sent yet, fall back to a normal error body.
			w.Header().Del("Content-Type")
			w.Header().Del("Cache-Control")
			respondError(w, http.StatusBadGateway, "tutor unavailable")
			return
		}
		h.logger.Error("chat stream interrupted", "error", err, "user", claims.Subject)
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()

	it := &tutor.Interaction{
		ID:                  id.New(),
		UserID:              claims.Subject,
		CaseID:              req.CaseID,
		Topic:               req.Topic,
		Question:            req.Message,
		Reply:               reply,
		ResponseTimeSeconds: time.Since(startedAt).Seconds(),
		Timestamp:           time.Now().UTC(),
	}
	if err := h.store.SaveInteraction(r.Context(), it); err != nil {
		h.logger.Error("save interaction", "error", err, "user", claims.Subject)
	}
}

// chatHistory returns the student's recent tutor exchanges, newest first.
// @Summary      Chat history
// @Tags         Tutor
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query    int  false  "Max entries (default 50)"
// @Success      200    {array}  tutor.Interaction
// @Router       /chat/history [get]
func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	items, err := h.store.ListInteractionsByUser(r.Context(), claims.Subject, limit)
	if h.handleStoreError(w, err, "interactions") {
		return
	}
	respondJSON(w, http.StatusOK, items)
}
