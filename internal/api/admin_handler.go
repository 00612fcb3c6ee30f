package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
)

// ── Response types ──────────────────────────────────────────────────────────

type ExportStudent struct {
	User        UserResponse            `json:"user"`
	Progress    *progress.UserProgress  `json:"progress,omitempty"`
	Submissions []submission.Submission `json:"submissions"`
}

type ExportData struct {
	Version    string          `json:"version"`
	ExportedAt string          `json:"exported_at"`
	Students   []ExportStudent `json:"students"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// exportData downloads every account's submissions and progress as JSON.
// @Summary      Export all data
// @Description  Full dump of accounts, submission logs and progress snapshots for backup or offline analysis.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ExportData
// @Failure      403  {object}  map[string]string
// @Router       /admin/export [get]
func (h *Handler) exportData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.store.ListUsers(ctx)
	if h.handleStoreError(w, err, "users") {
		return
	}

	data := ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Students:   make([]ExportStudent, 0, len(users)),
	}

	for _, u := range users {
		subs, err := h.store.ListSubmissionsByUser(ctx, u.ID)
		if err != nil {
			continue
		}
		entry := ExportStudent{User: toUserResponse(u), Submissions: subs}
		if p, err := h.store.GetProgress(ctx, u.ID); err == nil {
			entry.Progress = p
		}
		data.Students = append(data.Students, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=helix-export.json")
	json.NewEncoder(w).Encode(data)
}

// purgeUserData erases one student's submissions, chat history and
// progress. The account itself survives.
// @Summary      Purge a student's data
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "Student user ID"
// @Success      200     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /admin/users/{userID}/data [delete]
func (h *Handler) purgeUserData(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if _, err := h.store.GetUser(r.Context(), userID); h.handleStoreError(w, err, "user") {
		return
	}
	if err := h.store.PurgeUserData(r.Context(), userID); err != nil {
		h.logger.Error("purge user data", "error", err, "user", userID)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	claims := ClaimsFrom(r.Context())
	h.logger.Info("user data purged", "user", userID, "by", claims.Subject)
	respondJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}
