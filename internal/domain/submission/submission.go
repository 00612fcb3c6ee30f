package submission

import "time"

// Classification is the normalized grading label for one answer.
type Classification string

const (
	Correct          Classification = "CORRECT"
	PartiallyCorrect Classification = "PARTIALLY_CORRECT"
	Incorrect        Classification = "INCORRECT"
	// Error marks a submission whose grading service failed after all
	// retries. It carries zero credit and never extends a streak.
	Error Classification = "ERROR"
)

// Verdict is the normalized outcome of grading one answer. It is embedded
// in the Submission's result and never persisted standalone.
type Verdict struct {
	Classification Classification `json:"classification"`
	IsCorrect      bool           `json:"is_correct"`
	Feedback       string         `json:"feedback"`
}

// Mode distinguishes the two answer formats and grading strategies.
type Mode string

const (
	ModeQuiz     Mode = "quiz"
	ModeClinical Mode = "clinical"
)

// Breakdown itemizes the points of a clinical-case submission. Quiz
// submissions leave it zero-valued.
type Breakdown struct {
	Diagnosis   float64 `json:"diagnosis"`
	Exams       float64 `json:"exams"`
	Plan        float64 `json:"plan"`
	StreakBonus float64 `json:"streak_bonus"`
}

// Result combines the verdict with the computed point breakdown.
type Result struct {
	Verdict
	PointsGained float64   `json:"points_gained"`
	Breakdown    Breakdown `json:"breakdown"`
	// StreakCounts reports whether this submission extends the streak.
	// Partial credit counts toward accuracy but not toward the streak.
	StreakCounts bool `json:"streak_counts"`
}

// ClinicalAnswer is the structured answer of a clinical case.
type ClinicalAnswer struct {
	Diagnosis      string   `json:"diagnosis"`
	RequestedExams []string `json:"requested_exams"`
	TreatmentPlan  string   `json:"treatment_plan"`
}

// Submission is one student attempt at one question or case. It is created
// at submission time and never mutated; the log is append-only.
type Submission struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CaseID          string          `json:"case_id"`
	Mode            Mode            `json:"mode"`
	Answer          string          `json:"answer"`
	ClinicalAnswer  *ClinicalAnswer `json:"clinical_answer,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	Result          Result          `json:"result"`
	Timestamp       time.Time       `json:"timestamp"`
}
