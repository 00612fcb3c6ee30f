package clinicalcase

// ClinicalCase is an immutable reference record for rubric-graded practice.
// The student reads the chart, requests complementary exams, and submits a
// diagnostic hypothesis plus a treatment plan.
type ClinicalCase struct {
	ID          string
	Title       string
	Complaint   string
	History     string
	Antecedents string
	PhysicalEx  string
	VitalSigns  map[string]string

	// ReferenceDiagnosis is the expected diagnosis; Synonyms are accepted
	// alternative names worth high partial credit.
	ReferenceDiagnosis string
	Synonyms           []string

	// RelevantExams map exam name to its simulated result. OptionalExams are
	// reasonable but not decisive. Anything else requested is penalized.
	RelevantExams map[string]string
	OptionalExams map[string]string

	// PlanKeywords are the conduct hints checked against the treatment plan.
	PlanKeywords []string

	KnowledgeComponents []string
	Level               int
}

// MaxPoints is the ceiling for a single submission on this case before the
// streak bonus: full diagnosis plus every relevant and optional exam plus
// every plan keyword.
func (c ClinicalCase) MaxPoints() float64 {
	total := 10.0
	total += float64(len(c.RelevantExams)) * 3
	total += float64(len(c.OptionalExams)) * 1
	for i := range c.PlanKeywords {
		total += PlanKeywordCredit(i)
	}
	return total
}

// PlanKeywordCredit returns the diminishing credit for the i-th distinct
// plan keyword matched: 3, 2, 1, then 1 for each additional hit.
func PlanKeywordCredit(i int) float64 {
	switch i {
	case 0:
		return 3
	case 1:
		return 2
	default:
		return 1
	}
}
