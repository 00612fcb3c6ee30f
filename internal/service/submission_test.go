package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/grader"
	"github.com/helix-ai/backend/internal/service"
	"github.com/helix-ai/backend/internal/store"
)

// stubGrader returns a fixed evaluation for every request.
type stubGrader struct {
	ev grader.Evaluation
}

func (s *stubGrader) Evaluate(_ context.Context, _ grader.Request) grader.Evaluation {
	return s.ev
}

func newService(t *testing.T, g grader.Grader) (*service.SubmissionService, store.Store) {
	t.Helper()
	st, err := store.NewJSONFile(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewSubmissionService(st, g, question.Default(), clinicalcase.Default(), logger)
	return svc, st
}

func firstQuestionID(t *testing.T) string {
	t.Helper()
	q, ok := question.Default().PickNext(1, nil)
	if !ok {
		t.Fatal("seed catalog has no level-1 question")
	}
	return q.ID
}

func TestSubmit_CorrectAnswerUpdatesProgress(t *testing.T) {
	svc, _ := newService(t, &stubGrader{ev: grader.Evaluation{
		Classification: submission.Correct,
		Feedback:       "Muito bem.",
	}})
	qid := firstQuestionID(t)

	res, err := svc.Submit(context.Background(), service.SubmitRequest{
		UserID: "u1", ItemID: qid, Mode: submission.ModeQuiz, Answer: "...",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !res.Submission.Result.IsCorrect {
		t.Error("expected correct result")
	}
	if res.Progress.Score <= 0 {
		t.Errorf("expected score gain, got %v", res.Progress.Score)
	}
	if res.Progress.Streak != 1 {
		t.Errorf("expected streak 1, got %d", res.Progress.Streak)
	}

	prog, err := svc.Progress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if prog.Score != res.Progress.Score {
		t.Errorf("expected persisted progress, got %v", prog.Score)
	}
}

func TestSubmit_GradingErrorRecordsButDoesNotScore(t *testing.T) {
	svc, st := newService(t, &stubGrader{ev: grader.Evaluation{
		Classification: submission.Error,
		Feedback:       "indisponível",
	}})
	qid := firstQuestionID(t)

	res, err := svc.Submit(context.Background(), service.SubmitRequest{
		UserID: "u1", ItemID: qid, Mode: submission.ModeQuiz, Answer: "...",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if res.Submission.Result.Classification != submission.Error {
		t.Errorf("expected ERROR verdict, got %s", res.Submission.Result.Classification)
	}
	if res.Progress.Score != 0 || res.Progress.Streak != 0 {
		t.Errorf("expected untouched progress, got %+v", res.Progress)
	}

	subs, err := st.ListSubmissionsByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("expected errored submission to be recorded, got %d", len(subs))
	}
	if _, err := st.GetProgress(context.Background(), "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected no progress snapshot, got %v", err)
	}
}

func TestSubmit_UnknownItem(t *testing.T) {
	svc, _ := newService(t, &stubGrader{})

	_, err := svc.Submit(context.Background(), service.SubmitRequest{
		UserID: "u1", ItemID: "nope", Mode: submission.ModeQuiz,
	})
	if !errors.Is(err, service.ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestSubmit_LockedLevelRejected(t *testing.T) {
	svc, _ := newService(t, &stubGrader{ev: grader.Evaluation{Classification: submission.Correct}})

	var advanced question.Question
	for _, q := range question.Default().All() {
		if q.Difficulty == question.DifficultyAdvanced {
			advanced = q
			break
		}
	}
	if advanced.ID == "" {
		t.Fatal("seed catalog has no advanced question")
	}

	_, err := svc.Submit(context.Background(), service.SubmitRequest{
		UserID: "u1", ItemID: advanced.ID, Mode: submission.ModeQuiz, Answer: "...",
	})
	if !errors.Is(err, service.ErrLevelLocked) {
		t.Errorf("expected ErrLevelLocked for a fresh user, got %v", err)
	}
}

func TestSubmit_ClinicalStreakBonusAppliedOnThird(t *testing.T) {
	svc, _ := newService(t, &stubGrader{ev: grader.Evaluation{
		Classification: submission.Correct,
		Diagnosis:      10,
		Exams:          3,
		Plan:           3,
	}})

	c, ok := clinicalcase.Default().PickNext(1, nil)
	if !ok {
		t.Fatal("seed catalog has no level-1 case")
	}

	var last *service.SubmitResult
	for i := 0; i < 3; i++ {
		res, err := svc.Submit(context.Background(), service.SubmitRequest{
			UserID: "u1", ItemID: c.ID, Mode: submission.ModeClinical,
			Clinical: &submission.ClinicalAnswer{Diagnosis: "x"},
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		last = res
	}

	if last.Progress.Streak != 3 {
		t.Errorf("expected streak 3, got %d", last.Progress.Streak)
	}
	if last.Submission.Result.Breakdown.StreakBonus == 0 {
		t.Error("expected streak bonus on the third consecutive full answer")
	}
}

func TestNextQuestion_SkipsCorrectlyAnswered(t *testing.T) {
	svc, _ := newService(t, &stubGrader{ev: grader.Evaluation{Classification: submission.Correct}})
	ctx := context.Background()

	q1, err := svc.NextQuestion(ctx, "u1")
	if err != nil {
		t.Fatalf("next question: %v", err)
	}

	if _, err := svc.Submit(ctx, service.SubmitRequest{
		UserID: "u1", ItemID: q1.ID, Mode: submission.ModeQuiz, Answer: "...",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	q2, err := svc.NextQuestion(ctx, "u1")
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if q2.ID == q1.ID {
		t.Error("expected the next question to skip the one already answered correctly")
	}
}
