package grader

import (
	"context"
	"fmt"
	"strings"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/submission"
)

// Rubric score bands for the diagnosis component.
const (
	diagnosisExactScore   = 10
	diagnosisSynonymScore = 8
	diagnosisPartialScore = 5

	examRelevantScore   = 3
	examOptionalScore   = 1
	examIrrelevantScore = -2
	examNonePenalty     = -5

	// overlapThreshold is the minimum fraction of reference-diagnosis
	// tokens that must appear in the answer for partial credit.
	overlapThreshold = 0.5

	// examTypoTolerance is the maximum edit distance still treated as
	// a misspelling of a known exam name.
	examTypoTolerance = 2
)

// examAliases maps common shorthand for exam names to their canonical
// catalog form.
var examAliases = map[string]string{
	"hc":                   "hemograma",
	"hemograma completo":   "hemograma",
	"rx":                   "raio-x de torax",
	"rx de torax":          "raio-x de torax",
	"raio x de torax":      "raio-x de torax",
	"radiografia de torax": "raio-x de torax",
	"glicemia":             "glicemia de jejum",
	"hb glicada":           "hemoglobina glicada",
	"hba1c":                "hemoglobina glicada",
	"sat o2":               "oximetria de pulso",
	"saturacao":            "oximetria de pulso",
	"gasometria":           "gasometria arterial",
	"eas":                  "urina tipo 1",
	"urina 1":              "urina tipo 1",
}

// RubricGrader grades clinical-case answers deterministically against the
// case's reference diagnosis, exam lists and treatment-plan keywords.
// No network access is involved, so it never returns classification ERROR.
type RubricGrader struct{}

func NewRubricGrader() *RubricGrader {
	return &RubricGrader{}
}

func (g *RubricGrader) Evaluate(_ context.Context, req Request) Evaluation {
	c := req.Case
	ans := req.Clinical
	if c == nil || ans == nil {
		return Evaluation{
			Classification: submission.Incorrect,
			Feedback:       "resposta clínica incompleta",
		}
	}

	diag := g.diagnosisScore(c, ans.Diagnosis)
	exams, examNotes := g.examScore(c, ans.RequestedExams)
	plan, planHits := g.planScore(c, ans.TreatmentPlan)

	ev := Evaluation{
		Diagnosis: diag,
		Exams:     exams,
		Plan:      plan,
	}
	switch {
	case diag >= diagnosisExactScore:
		ev.Classification = submission.Correct
	case diag+exams+plan > 0:
		ev.Classification = submission.PartiallyCorrect
	default:
		ev.Classification = submission.Incorrect
	}
	ev.Feedback = buildRubricFeedback(c, diag, examNotes, planHits)
	return ev
}

func (g *RubricGrader) diagnosisScore(c *clinicalcase.ClinicalCase, answer string) float64 {
	got := normalize(answer)
	if got == "" {
		return 0
	}
	ref := normalize(c.ReferenceDiagnosis)
	if got == ref || strings.Contains(got, ref) {
		return diagnosisExactScore
	}
	for _, syn := range c.Synonyms {
		s := normalize(syn)
		if got == s || strings.Contains(got, s) {
			return diagnosisSynonymScore
		}
	}
	if tokenOverlap(answer, c.ReferenceDiagnosis) >= overlapThreshold {
		return diagnosisPartialScore
	}
	return 0
}

func (g *RubricGrader) examScore(c *clinicalcase.ClinicalCase, requested []string) (float64, []string) {
	if len(requested) == 0 {
		if len(c.RelevantExams) > 0 {
			return examNonePenalty, []string{"nenhum exame solicitado"}
		}
		return 0, nil
	}

	var score float64
	var notes []string
	seen := make(map[string]bool)
	for _, raw := range requested {
		name := canonicalExam(c, raw)
		if seen[name] {
			continue
		}
		seen[name] = true
		switch {
		case matchExam(c.RelevantExams, name):
			score += examRelevantScore
			notes = append(notes, fmt.Sprintf("%s: relevante", raw))
		case matchExam(c.OptionalExams, name):
			score += examOptionalScore
			notes = append(notes, fmt.Sprintf("%s: complementar", raw))
		default:
			score += examIrrelevantScore
			notes = append(notes, fmt.Sprintf("%s: não indicado neste caso", raw))
		}
	}
	return score, notes
}

// canonicalExam folds a free-text exam name through the alias table and,
// failing that, through typo correction against the case's own exam names.
func canonicalExam(c *clinicalcase.ClinicalCase, raw string) string {
	name := normalize(raw)
	if alias, ok := examAliases[name]; ok {
		return alias
	}
	best := name
	bestDist := examTypoTolerance + 1
	for known := range c.RelevantExams {
		if d := editDistance(name, normalize(known)); d < bestDist {
			best, bestDist = normalize(known), d
		}
	}
	for known := range c.OptionalExams {
		if d := editDistance(name, normalize(known)); d < bestDist {
			best, bestDist = normalize(known), d
		}
	}
	if bestDist <= examTypoTolerance {
		return best
	}
	return name
}

func matchExam(set map[string]string, name string) bool {
	for known := range set {
		if normalize(known) == name {
			return true
		}
	}
	return false
}

func (g *RubricGrader) planScore(c *clinicalcase.ClinicalCase, plan string) (float64, []string) {
	text := normalize(plan)
	if text == "" {
		return 0, nil
	}
	var score float64
	var hits []string
	i := 0
	for _, kw := range c.PlanKeywords {
		if strings.Contains(text, normalize(kw)) {
			score += clinicalcase.PlanKeywordCredit(i)
			hits = append(hits, kw)
			i++
		}
	}
	return score, hits
}

func buildRubricFeedback(c *clinicalcase.ClinicalCase, diag float64, examNotes, planHits []string) string {
	var b strings.Builder
	switch {
	case diag >= diagnosisExactScore:
		b.WriteString("Diagnóstico correto")
	case diag >= diagnosisSynonymScore:
		fmt.Fprintf(&b, "Diagnóstico aceito como equivalente a %q", c.ReferenceDiagnosis)
	case diag >= diagnosisPartialScore:
		fmt.Fprintf(&b, "Diagnóstico parcialmente alinhado ao esperado (%s)", c.ReferenceDiagnosis)
	default:
		fmt.Fprintf(&b, "Diagnóstico esperado: %s", c.ReferenceDiagnosis)
	}
	if len(examNotes) > 0 {
		b.WriteString(". Exames: ")
		b.WriteString(strings.Join(examNotes, "; "))
	}
	if len(planHits) > 0 {
		b.WriteString(". Conduta contemplou: ")
		b.WriteString(strings.Join(planHits, ", "))
	}
	b.WriteString(".")
	return b.String()
}
