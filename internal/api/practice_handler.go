package api

import (
	"net/http"
	"strings"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

// QuestionResponse is the student view of a question. Expected answers and
// critical errors stay server-side.
type QuestionResponse struct {
	ID                  string   `json:"id"`
	Prompt              string   `json:"prompt"`
	KnowledgeComponents []string `json:"knowledge_components"`
	MaxPoints           float64  `json:"max_points"`
	Difficulty          string   `json:"difficulty"`
}

// CaseResponse is the student view of a clinical case: the chart only.
// Reference diagnosis, exam relevance and plan keywords stay server-side.
type CaseResponse struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Complaint           string            `json:"complaint"`
	History             string            `json:"history"`
	Antecedents         string            `json:"antecedents"`
	PhysicalExam        string            `json:"physical_exam"`
	VitalSigns          map[string]string `json:"vital_signs"`
	KnowledgeComponents []string          `json:"knowledge_components"`
	Level               int               `json:"level"`
}

type RequestExamsRequest struct {
	Exams []string `json:"exams"`
}

type ExamResult struct {
	Exam   string `json:"exam"`
	Result string `json:"result"`
}

func toQuestionResponse(q question.Question) QuestionResponse {
	return QuestionResponse{
		ID:                  q.ID,
		Prompt:              q.Prompt,
		KnowledgeComponents: q.KnowledgeComponents,
		MaxPoints:           q.MaxPoints,
		Difficulty:          string(q.Difficulty),
	}
}

func toCaseResponse(c clinicalcase.ClinicalCase) CaseResponse {
	return CaseResponse{
		ID:                  c.ID,
		Title:               c.Title,
		Complaint:           c.Complaint,
		History:             c.History,
		Antecedents:         c.Antecedents,
		PhysicalExam:        c.PhysicalEx,
		VitalSigns:          c.VitalSigns,
		KnowledgeComponents: c.KnowledgeComponents,
		Level:               c.Level,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// listQuestions lists the questions unlocked at the student's level.
// @Summary      List unlocked questions
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  QuestionResponse
// @Router       /questions [get]
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	p, err := h.submissions.Progress(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("load progress", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := []QuestionResponse{}
	for _, q := range h.questions.All() {
		if q.AvailableAt(p.UnlockedLevel) {
			out = append(out, toQuestionResponse(q))
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// nextQuestion suggests the next question the student has not yet answered
// correctly.
// @Summary      Next question
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  QuestionResponse
// @Failure      404  {object}  map[string]string
// @Router       /questions/next [get]
func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	q, err := h.submissions.NextQuestion(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, http.StatusNotFound, "no question available")
		return
	}
	respondJSON(w, http.StatusOK, toQuestionResponse(q))
}

// listCases lists the clinical cases unlocked at the student's level.
// @Summary      List unlocked cases
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  CaseResponse
// @Router       /cases [get]
func (h *Handler) listCases(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	p, err := h.submissions.Progress(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("load progress", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := []CaseResponse{}
	for _, c := range h.cases.All() {
		if c.Level <= p.UnlockedLevel {
			out = append(out, toCaseResponse(c))
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// nextCase suggests the next clinical case for the student.
// @Summary      Next clinical case
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CaseResponse
// @Failure      404  {object}  map[string]string
// @Router       /cases/next [get]
func (h *Handler) nextCase(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	c, err := h.submissions.NextCase(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, http.StatusNotFound, "no case available")
		return
	}
	respondJSON(w, http.StatusOK, toCaseResponse(c))
}

// getCase returns one clinical case chart.
// @Summary      Get a clinical case
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Param        caseID  path      string  true  "Case ID"
// @Success      200     {object}  CaseResponse
// @Failure      404     {object}  map[string]string
// @Router       /cases/{caseID} [get]
func (h *Handler) getCase(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cases.Get(r.PathValue("caseID"))
	if !ok {
		respondError(w, http.StatusNotFound, "case not found")
		return
	}
	respondJSON(w, http.StatusOK, toCaseResponse(c))
}

// requestExams returns the simulated result of each requested exam. Exams
// outside the case's relevant and optional lists come back unremarkable,
// the same way a real chart would.
// @Summary      Request complementary exams
// @Tags         Practice
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        caseID  path      string               true  "Case ID"
// @Param        body    body      RequestExamsRequest  true  "Exam names"
// @Success      200     {array}   ExamResult
// @Failure      404     {object}  map[string]string
// @Router       /cases/{caseID}/exams [post]
func (h *Handler) requestExams(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cases.Get(r.PathValue("caseID"))
	if !ok {
		respondError(w, http.StatusNotFound, "case not found")
		return
	}

	var req RequestExamsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out := []ExamResult{}
	for _, name := range req.Exams {
		out = append(out, ExamResult{Exam: name, Result: examResult(c, name)})
	}
	respondJSON(w, http.StatusOK, out)
}

func examResult(c clinicalcase.ClinicalCase, name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for exam, result := range c.RelevantExams {
		if strings.ToLower(exam) == key {
			return result
		}
	}
	for exam, result := range c.OptionalExams {
		if strings.ToLower(exam) == key {
			return result
		}
	}
	return "Exame sem alterações significativas."
}
