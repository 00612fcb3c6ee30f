package scoring_test

import (
	"testing"

	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/grader"
	"github.com/helix-ai/backend/internal/scoring"
)

func TestCompute_QuizCorrect(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode:        submission.ModeQuiz,
		Evaluation:  grader.Evaluation{Classification: submission.Correct},
		QuestionMax: 2,
	})

	if res.PointsGained != 2 {
		t.Errorf("expected 2 points, got %v", res.PointsGained)
	}
	if !res.IsCorrect || !res.StreakCounts {
		t.Error("expected correct answer to count for accuracy and streak")
	}
}

func TestCompute_QuizPartialGetsHalfCredit(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode:        submission.ModeQuiz,
		Evaluation:  grader.Evaluation{Classification: submission.PartiallyCorrect},
		QuestionMax: 2,
	})

	if res.PointsGained != 1 {
		t.Errorf("expected 1 point for partial on a 2-point question, got %v", res.PointsGained)
	}
	if !res.IsCorrect {
		t.Error("expected partial answer to count toward accuracy")
	}
	if res.StreakCounts {
		t.Error("partial answer must not extend the streak")
	}
}

func TestCompute_QuizIncorrect(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode:        submission.ModeQuiz,
		Evaluation:  grader.Evaluation{Classification: submission.Incorrect},
		QuestionMax: 3,
	})

	if res.PointsGained != 0 {
		t.Errorf("expected 0 points, got %v", res.PointsGained)
	}
	if res.IsCorrect || res.StreakCounts {
		t.Error("incorrect answer must not count for accuracy or streak")
	}
}

func TestCompute_QuizGradingErrorAwardsNothing(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode:        submission.ModeQuiz,
		Evaluation:  grader.Evaluation{Classification: submission.Error, Feedback: "unavailable"},
		QuestionMax: 3,
	})

	if res.PointsGained != 0 || res.IsCorrect || res.StreakCounts {
		t.Errorf("expected inert result for ERROR verdict, got %+v", res)
	}
	if res.Classification != submission.Error {
		t.Errorf("expected ERROR classification to be preserved, got %s", res.Classification)
	}
}

func TestCompute_ClinicalSumsComponents(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode: submission.ModeClinical,
		Evaluation: grader.Evaluation{
			Classification: submission.Correct,
			Diagnosis:      10,
			Exams:          4,
			Plan:           6,
		},
		CaseMax: 25,
	})

	if res.PointsGained != 20 {
		t.Errorf("expected 20 points, got %v", res.PointsGained)
	}
	if res.Breakdown.Diagnosis != 10 || res.Breakdown.Exams != 4 || res.Breakdown.Plan != 6 {
		t.Errorf("unexpected breakdown %+v", res.Breakdown)
	}
}

func TestCompute_ClinicalNegativeTotalClampsToZero(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode: submission.ModeClinical,
		Evaluation: grader.Evaluation{
			Classification: submission.Incorrect,
			Diagnosis:      0,
			Exams:          -5,
		},
		CaseMax: 25,
	})

	if res.PointsGained != 0 {
		t.Errorf("expected clamp to 0, got %v", res.PointsGained)
	}
}

func TestCompute_ClinicalCapsAtCaseMax(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode: submission.ModeClinical,
		Evaluation: grader.Evaluation{
			Classification: submission.Correct,
			Diagnosis:      10,
			Exams:          12,
			Plan:           8,
		},
		CaseMax: 25,
	})

	if res.PointsGained != 25 {
		t.Errorf("expected cap at 25, got %v", res.PointsGained)
	}
}

func TestCompute_StreakBonusEveryThird(t *testing.T) {
	full := grader.Evaluation{
		Classification: submission.Correct,
		Diagnosis:      10,
	}

	tests := []struct {
		name          string
		currentStreak int
		wantBonus     float64
	}{
		{"first correct", 0, 0},
		{"second correct", 1, 0},
		{"third correct gets bonus", 2, scoring.StreakBonusPoints},
		{"fourth correct", 3, 0},
		{"sixth correct gets bonus", 5, scoring.StreakBonusPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoring.Compute(scoring.Input{
				Mode:          submission.ModeClinical,
				Evaluation:    full,
				CaseMax:       25,
				CurrentStreak: tt.currentStreak,
			})

			if res.Breakdown.StreakBonus != tt.wantBonus {
				t.Errorf("expected bonus %v, got %v", tt.wantBonus, res.Breakdown.StreakBonus)
			}
			if !res.StreakCounts {
				t.Error("full diagnosis must extend the streak")
			}
		})
	}
}

func TestCompute_PartialDiagnosisDoesNotExtendStreak(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode: submission.ModeClinical,
		Evaluation: grader.Evaluation{
			Classification: submission.PartiallyCorrect,
			Diagnosis:      8,
			Exams:          3,
		},
		CaseMax:       25,
		CurrentStreak: 2,
	})

	if res.StreakCounts {
		t.Error("synonym-level diagnosis must not extend the streak")
	}
	if res.Breakdown.StreakBonus != 0 {
		t.Errorf("expected no bonus, got %v", res.Breakdown.StreakBonus)
	}
	if !res.IsCorrect {
		t.Error("partially correct case still counts toward accuracy")
	}
}

func TestCompute_BonusMayExceedCaseMax(t *testing.T) {
	res := scoring.Compute(scoring.Input{
		Mode: submission.ModeClinical,
		Evaluation: grader.Evaluation{
			Classification: submission.Correct,
			Diagnosis:      10,
			Exams:          12,
			Plan:           8,
		},
		CaseMax:       25,
		CurrentStreak: 2,
	})

	// The cap applies to the rubric sum; the bonus rides on top.
	if res.PointsGained != 25+scoring.StreakBonusPoints {
		t.Errorf("expected %v, got %v", 25+scoring.StreakBonusPoints, res.PointsGained)
	}
}
