package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

// CatalogQuestion is the professor view of a question, grading key
// included.
type CatalogQuestion struct {
	ID                  string   `json:"id"`
	Prompt              string   `json:"prompt"`
	KnowledgeComponents []string `json:"knowledge_components"`
	ExpectedAnswer      string   `json:"expected_answer"`
	CriticalError       string   `json:"critical_error,omitempty"`
	MaxPoints           float64  `json:"max_points"`
	Difficulty          string   `json:"difficulty"`
}

type CatalogCase struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Complaint           string            `json:"complaint"`
	History             string            `json:"history"`
	Antecedents         string            `json:"antecedents"`
	PhysicalExam        string            `json:"physical_exam"`
	VitalSigns          map[string]string `json:"vital_signs"`
	ReferenceDiagnosis  string            `json:"reference_diagnosis"`
	Synonyms            []string          `json:"synonyms"`
	RelevantExams       map[string]string `json:"relevant_exams"`
	OptionalExams       map[string]string `json:"optional_exams"`
	PlanKeywords        []string          `json:"plan_keywords"`
	KnowledgeComponents []string          `json:"knowledge_components"`
	Level               int               `json:"level"`
}

type CatalogExport struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Questions  []CatalogQuestion `json:"questions"`
	Cases      []CatalogCase     `json:"cases"`
}

type CatalogImportResult struct {
	QuestionsCreated int `json:"questions_created"`
	CasesCreated     int `json:"cases_created"`
	Skipped          int `json:"skipped"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// exportCatalog downloads the full reference catalog, grading keys
// included.
// @Summary      Export the catalog
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CatalogExport
// @Failure      403  {object}  map[string]string
// @Router       /admin/catalog [get]
func (h *Handler) exportCatalog(w http.ResponseWriter, r *http.Request) {
	data := CatalogExport{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Questions:  make([]CatalogQuestion, 0),
		Cases:      make([]CatalogCase, 0),
	}

	for _, q := range h.questions.All() {
		data.Questions = append(data.Questions, CatalogQuestion{
			ID:                  q.ID,
			Prompt:              q.Prompt,
			KnowledgeComponents: q.KnowledgeComponents,
			ExpectedAnswer:      q.ExpectedAnswer,
			CriticalError:       q.CriticalError,
			MaxPoints:           q.MaxPoints,
			Difficulty:          string(q.Difficulty),
		})
	}
	for _, c := range h.cases.All() {
		data.Cases = append(data.Cases, CatalogCase{
			ID:                  c.ID,
			Title:               c.Title,
			Complaint:           c.Complaint,
			History:             c.History,
			Antecedents:         c.Antecedents,
			PhysicalExam:        c.PhysicalEx,
			VitalSigns:          c.VitalSigns,
			ReferenceDiagnosis:  c.ReferenceDiagnosis,
			Synonyms:            c.Synonyms,
			RelevantExams:       c.RelevantExams,
			OptionalExams:       c.OptionalExams,
			PlanKeywords:        c.PlanKeywords,
			KnowledgeComponents: c.KnowledgeComponents,
			Level:               c.Level,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=helix-catalog.json")
	json.NewEncoder(w).Encode(data)
}

// importCatalog adds questions and cases from an export file. Existing IDs
// are skipped, never overwritten.
// @Summary      Import catalog content
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      CatalogExport  true  "Catalog to import"
// @Success      200   {object}  CatalogImportResult
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/catalog/import [post]
func (h *Handler) importCatalog(w http.ResponseWriter, r *http.Request) {
	var data CatalogExport
	if !decodeJSON(w, r, &data) {
		return
	}

	var result CatalogImportResult
	for _, q := range data.Questions {
		if q.ID == "" || q.Prompt == "" {
			result.Skipped++
			continue
		}
		added := h.questions.Add(question.Question{
			ID:                  q.ID,
			Prompt:              q.Prompt,
			KnowledgeComponents: q.KnowledgeComponents,
			ExpectedAnswer:      q.ExpectedAnswer,
			CriticalError:       q.CriticalError,
			MaxPoints:           q.MaxPoints,
			Difficulty:          question.Difficulty(q.Difficulty),
		})
		if added {
			result.QuestionsCreated++
		} else {
			result.Skipped++
		}
	}
	for _, c := range data.Cases {
		if c.ID == "" || c.ReferenceDiagnosis == "" {
			result.Skipped++
			continue
		}
		added := h.cases.Add(clinicalcase.ClinicalCase{
			ID:                  c.ID,
			Title:               c.Title,
			Complaint:           c.Complaint,
			History:             c.History,
			Antecedents:         c.Antecedents,
			PhysicalEx:          c.PhysicalExam,
			VitalSigns:          c.VitalSigns,
			ReferenceDiagnosis:  c.ReferenceDiagnosis,
			Synonyms:            c.Synonyms,
			RelevantExams:       c.RelevantExams,
			OptionalExams:       c.OptionalExams,
			PlanKeywords:        c.PlanKeywords,
			KnowledgeComponents: c.KnowledgeComponents,
			Level:               c.Level,
		})
		if added {
			result.CasesCreated++
		} else {
			result.Skipped++
		}
	}

	claims := ClaimsFrom(r.Context())
	h.logger.Info("catalog import",
		"by", claims.Subject,
		"questions_created", result.QuestionsCreated,
		"cases_created", result.CasesCreated,
		"skipped", result.Skipped,
	)
	respondJSON(w, http.StatusOK, result)
}
