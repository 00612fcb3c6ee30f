package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/report"
)

// ── Response types ──────────────────────────────────────────────────────────

type CohortRow struct {
	analytics.CohortEntry
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	WeakestComponent  string          `json:"weakest_component,omitempty"`
	WeakestDifficulty string          `json:"weakest_difficulty,omitempty"`
	Trend             analytics.Trend `json:"trend"`
}

type StudentStatsResponse struct {
	User  UserResponse        `json:"user"`
	Stats analytics.UserStats `json:"stats"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// myStats returns the authenticated student's analytics snapshot.
// @Summary      My statistics
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analytics.UserStats
// @Router       /analytics/me [get]
func (h *Handler) myStats(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	subs, err := h.store.ListSubmissionsByUser(r.Context(), claims.Subject)
	if h.handleStoreError(w, err, "submissions") {
		return
	}
	respondJSON(w, http.StatusOK, h.aggregator.UserStats(claims.Subject, subs, time.Now().UTC()))
}

// cohort returns the class ranking for professors.
// @Summary      Cohort ranking
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   CohortRow
// @Failure      403  {object}  map[string]string
// @Router       /analytics/cohort [get]
func (h *Handler) cohort(w http.ResponseWriter, r *http.Request) {
	rows, err := h.cohortRows(r.Context())
	if err != nil {
		h.logger.Error("build cohort", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]CohortRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, CohortRow{
			CohortEntry:       row.Entry,
			Name:              row.Name,
			Email:             row.Email,
			WeakestComponent:  row.Weakest,
			WeakestDifficulty: row.WeakestTier,
			Trend:             row.Trend,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// cohortReport downloads the cohort ranking as a spreadsheet.
// @Summary      Cohort spreadsheet
// @Tags         Analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200
// @Failure      403  {object}  map[string]string
// @Router       /analytics/cohort.xlsx [get]
func (h *Handler) cohortReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.cohortRows(r.Context())
	if err != nil {
		h.logger.Error("build cohort", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("turma_%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := report.WriteCohortXLSX(w, rows, now); err != nil {
		h.logger.Error("write cohort spreadsheet", "error", err)
	}
}

// studentStats returns one student's analytics for professors.
// @Summary      Student statistics
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "Student user ID"
// @Success      200     {object}  StudentStatsResponse
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /analytics/students/{userID} [get]
func (h *Handler) studentStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	u, err := h.store.GetUser(r.Context(), userID)
	if h.handleStoreError(w, err, "user") {
		return
	}

	subs, err := h.store.ListSubmissionsByUser(r.Context(), userID)
	if h.handleStoreError(w, err, "submissions") {
		return
	}

	respondJSON(w, http.StatusOK, StudentStatsResponse{
		User:  toUserResponse(u),
		Stats: h.aggregator.UserStats(userID, subs, time.Now().UTC()),
	})
}

// triggerDigest queues the weekly digest emails immediately.
// @Summary      Trigger the weekly digest
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string  "digest not configured"
// @Router       /admin/digest [post]
func (h *Handler) triggerDigest(w http.ResponseWriter, r *http.Request) {
	if h.digest == nil {
		respondError(w, http.StatusServiceUnavailable, "digest not configured")
		return
	}
	if err := h.digest.RunDigestOnce(r.Context()); err != nil {
		h.logger.Error("trigger digest", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// cohortRows joins the ranking with account details, seeding every student
// so accounts without submissions still appear at the bottom.
func (h *Handler) cohortRows(ctx context.Context) ([]report.StudentRow, error) {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	students := make(map[string]*auth.User)
	for _, u := range users {
		if u.Role == auth.RoleStudent {
			students[u.ID] = u
		}
	}

	all, err := h.store.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	byUser := make(map[string][]submission.Submission, len(students))
	for id := range students {
		byUser[id] = nil
	}
	for _, s := range all {
		if _, ok := students[s.UserID]; ok {
			byUser[s.UserID] = append(byUser[s.UserID], s)
		}
	}

	now := time.Now().UTC()
	entries := h.aggregator.Cohort(byUser, now)

	rows := make([]report.StudentRow, 0, len(entries))
	for _, entry := range entries {
		u := students[entry.UserID]
		stats := h.aggregator.UserStats(entry.UserID, byUser[entry.UserID], now)
		rows = append(rows, report.StudentRow{
			Entry:       entry,
			Name:        u.Name,
			Email:       u.Email,
			Weakest:     stats.WeakestComponent,
			WeakestTier: stats.WeakestDifficulty,
			Trend:       stats.Trend,
			Components:  stats.Components,
		})
	}
	return rows, nil
}
