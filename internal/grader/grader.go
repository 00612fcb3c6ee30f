package grader

import (
	"context"
	"fmt"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
)

// Request carries everything a grading strategy needs for one answer.
// Quiz mode fills Question and Answer; clinical mode fills Case and Clinical.
type Request struct {
	Mode     submission.Mode
	Question *question.Question
	Case     *clinicalcase.ClinicalCase
	Answer   string
	Clinical *submission.ClinicalAnswer
}

// Evaluation is the normalized output of a grading strategy. Rubric
// sub-scores are zero in quiz mode; the scoring calculator turns the
// classification (quiz) or the sub-scores (clinical) into points.
type Evaluation struct {
	Classification submission.Classification
	Feedback       string

	Diagnosis float64
	Exams     float64
	Plan      float64
}

// Grader grades a student's answer and always returns a well-formed
// Evaluation: a strategy that cannot reach its backing service reports
// classification ERROR instead of failing.
// Implementations may call an LLM, use deterministic rubric matching, or
// return canned results (for tests).
type Grader interface {
	Evaluate(ctx context.Context, req Request) Evaluation
}

// GradeError is returned by the LLM transport so the caller can distinguish
// between "model returned a bad grade" and "model was unreachable."
type GradeError struct {
	Reason  string
	Wrapped error
}

func (e *GradeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("grading failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("grading failed: %s", e.Reason)
}

func (e *GradeError) Unwrap() error {
	return e.Wrapped
}

// Dispatcher routes each request to the strategy for its mode.
type Dispatcher struct {
	rubric Grader
	ai     Grader
}

func NewDispatcher(rubric, ai Grader) *Dispatcher {
	return &Dispatcher{rubric: rubric, ai: ai}
}

func (d *Dispatcher) Evaluate(ctx context.Context, req Request) Evaluation {
	if req.Mode == submission.ModeClinical {
		return d.rubric.Evaluate(ctx, req)
	}
	return d.ai.Evaluate(ctx, req)
}
