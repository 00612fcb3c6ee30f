// Package scoring turns grading evaluations into points. It is pure: the
// same input always yields the same Result, which keeps it trivially
// testable and lets stored submissions be re-scored after rubric changes.
package scoring

import (
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/grader"
)

const (
	// partialCreditFactor is the share of a question's points awarded
	// for a partially correct answer.
	partialCreditFactor = 0.5

	// StreakBonusPoints is added every streakBonusEvery-th consecutive
	// fully correct clinical answer.
	StreakBonusPoints = 5
	streakBonusEvery  = 3

	fullDiagnosisScore = 10
)

// Input gathers everything the calculator needs about one submission.
// CurrentStreak is the user's streak BEFORE this submission.
type Input struct {
	Mode          submission.Mode
	Evaluation    grader.Evaluation
	QuestionMax   float64
	CaseMax       float64
	CurrentStreak int
}

// Compute derives the verdict, points and streak effect for one graded
// answer. Points are never negative and never exceed the item's maximum
// plus any streak bonus.
func Compute(in Input) submission.Result {
	if in.Mode == submission.ModeClinical {
		return computeClinical(in)
	}
	return computeQuiz(in)
}

func computeQuiz(in Input) submission.Result {
	ev := in.Evaluation
	res := submission.Result{
		Verdict: submission.Verdict{
			Classification: ev.Classification,
			Feedback:       ev.Feedback,
		},
	}

	switch ev.Classification {
	case submission.Correct:
		res.IsCorrect = true
		res.PointsGained = in.QuestionMax
		res.StreakCounts = true
	case submission.PartiallyCorrect:
		// Partial answers count toward accuracy but not the streak.
		res.IsCorrect = true
		res.PointsGained = in.QuestionMax * partialCreditFactor
	}
	return res
}

func computeClinical(in Input) submission.Result {
	ev := in.Evaluation
	res := submission.Result{
		Verdict: submission.Verdict{
			Classification: ev.Classification,
			Feedback:       ev.Feedback,
		},
		Breakdown: submission.Breakdown{
			Diagnosis: ev.Diagnosis,
			Exams:     ev.Exams,
			Plan:      ev.Plan,
		},
	}
	if ev.Classification == submission.Error {
		return res
	}

	raw := ev.Diagnosis + ev.Exams + ev.Plan
	if raw < 0 {
		raw = 0
	}
	if in.CaseMax > 0 && raw > in.CaseMax {
		raw = in.CaseMax
	}
	res.PointsGained = raw
	res.IsCorrect = ev.Classification == submission.Correct ||
		ev.Classification == submission.PartiallyCorrect

	// The streak only advances on a fully resolved case.
	if ev.Diagnosis >= fullDiagnosisScore {
		res.StreakCounts = true
		if (in.CurrentStreak+1)%streakBonusEvery == 0 {
			res.Breakdown.StreakBonus = StreakBonusPoints
			res.PointsGained += StreakBonusPoints
		}
	}
	return res
}
