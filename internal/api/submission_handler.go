package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/service"
)

// ── Request / Response types ────────────────────────────────────────────────

type SubmitRequest struct {
	ItemID          string                     `json:"item_id" example:"q1_nucleotideo"`
	Mode            string                     `json:"mode" example:"quiz"`
	Answer          string                     `json:"answer,omitempty"`
	ClinicalAnswer  *submission.ClinicalAnswer `json:"clinical_answer,omitempty"`
	DurationSeconds float64                    `json:"duration_seconds,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	if r.ItemID == "" {
		return errors.New("item_id is required")
	}
	switch submission.Mode(r.Mode) {
	case submission.ModeQuiz:
		if r.Answer == "" {
			return errors.New("answer is required for quiz submissions")
		}
	case submission.ModeClinical:
		if r.ClinicalAnswer == nil {
			return errors.New("clinical_answer is required for clinical submissions")
		}
	default:
		return errors.New("mode must be quiz or clinical")
	}
	return nil
}

type ProgressResponse struct {
	Score         float64   `json:"score"`
	Streak        int       `json:"streak"`
	UnlockedLevel int       `json:"unlocked_level"`
	ToNextLevel   float64   `json:"to_next_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SubmitResponse struct {
	SubmissionID string            `json:"submission_id"`
	Result       submission.Result `json:"result"`
	Progress     ProgressResponse  `json:"progress"`
	LeveledUp    bool              `json:"leveled_up"`
}

type SubmissionSummary struct {
	ID        string            `json:"id"`
	ItemID    string            `json:"item_id"`
	Mode      string            `json:"mode"`
	Result    submission.Result `json:"result"`
	Timestamp time.Time         `json:"timestamp"`
}

func toProgressResponse(p *progress.UserProgress) ProgressResponse {
	return ProgressResponse{
		Score:         p.Score,
		Streak:        p.Streak,
		UnlockedLevel: p.UnlockedLevel,
		ToNextLevel:   progress.ToNextLevel(p.Score),
		UpdatedAt:     p.UpdatedAt,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// submit grades one answer and returns the verdict plus updated progress.
// @Summary      Submit an answer
// @Description  Grade a quiz or clinical answer synchronously. Grading outages come back as an ERROR verdict without affecting progress.
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      SubmitRequest  true  "Answer"
// @Success      200   {object}  SubmitResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string  "level not yet unlocked"
// @Failure      404   {object}  map[string]string  "unknown question or case"
// @Router       /submissions [post]
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := ClaimsFrom(r.Context())
	result, err := h.submissions.Submit(r.Context(), service.SubmitRequest{
		UserID:          claims.Subject,
		ItemID:          req.ItemID,
		Mode:            submission.Mode(req.Mode),
		Answer:          req.Answer,
		Clinical:        req.ClinicalAnswer,
		DurationSeconds: req.DurationSeconds,
	})
	switch {
	case errors.Is(err, service.ErrUnknownItem):
		respondError(w, http.StatusNotFound, "unknown question or case")
		return
	case errors.Is(err, service.ErrLevelLocked):
		respondError(w, http.StatusForbidden, "level not yet unlocked")
		return
	case err != nil:
		h.logger.Error("submit", "error", err, "user", claims.Subject)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, SubmitResponse{
		SubmissionID: result.Submission.ID,
		Result:       result.Submission.Result,
		Progress:     toProgressResponse(result.Progress),
		LeveledUp:    result.LeveledUp,
	})
}

// listSubmissions returns the student's own submission history, oldest
// first.
// @Summary      My submission history
// @Tags         Submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  SubmissionSummary
// @Router       /submissions [get]
func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	subs, err := h.store.ListSubmissionsByUser(r.Context(), claims.Subject)
	if h.handleStoreError(w, err, "submissions") {
		return
	}

	out := make([]SubmissionSummary, 0, len(subs))
	for _, s := range subs {
		out = append(out, SubmissionSummary{
			ID:        s.ID,
			ItemID:    s.CaseID,
			Mode:      string(s.Mode),
			Result:    s.Result,
			Timestamp: s.Timestamp,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// getProgress returns the student's current snapshot.
// @Summary      My progress
// @Tags         Submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProgressResponse
// @Router       /progress [get]
func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	p, err := h.submissions.Progress(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("load progress", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, toProgressResponse(p))
}
