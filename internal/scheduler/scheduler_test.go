package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/id"
	"github.com/helix-ai/backend/internal/jobs"
	"github.com/helix-ai/backend/internal/scheduler"
	"github.com/helix-ai/backend/internal/store"
)

type fakeMailer struct {
	mu     sync.Mutex
	queued []jobs.EmailPayload
}

func (f *fakeMailer) EnqueueEmail(p jobs.EmailPayload, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, p)
	return nil
}

func setup(t *testing.T) (store.Store, *scheduler.Scheduler, *fakeMailer) {
	t.Helper()
	st, err := store.NewJSONFile(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := analytics.NewAggregator(question.Default(), clinicalcase.Default())
	return st, scheduler.New(st, agg, mailer, logger), mailer
}

func addUser(t *testing.T, st store.Store, email, name string, role auth.Role) *auth.User {
	t.Helper()
	u := auth.NewUser(email, name, role)
	u.PasswordHash = "x"
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestRunDigestOnce_QueuesOneEmailPerProfessor(t *testing.T) {
	st, sched, mailer := setup(t)
	ctx := context.Background()

	student := addUser(t, st, "ana@aluno.fcmsantacasasp.edu.br", "Ana", auth.RoleStudent)
	addUser(t, st, "prof1@fcmsantacasasp.edu.br", "Prof 1", auth.RoleProfessor)
	addUser(t, st, "prof2@fcmsantacasasp.edu.br", "Prof 2", auth.RoleProfessor)

	for i := 0; i < 3; i++ {
		err := st.SaveSubmission(ctx, &submission.Submission{
			ID: id.New(), UserID: student.ID, CaseID: "q1", Mode: submission.ModeQuiz,
			Timestamp: time.Now().UTC(),
			Result: submission.Result{
				Verdict:      submission.Verdict{Classification: submission.Correct, IsCorrect: true},
				PointsGained: 1,
			},
		})
		if err != nil {
			t.Fatalf("save submission: %v", err)
		}
	}

	if err := sched.RunDigestOnce(ctx); err != nil {
		t.Fatalf("run digest: %v", err)
	}

	if len(mailer.queued) != 2 {
		t.Fatalf("expected 2 digest emails, got %d", len(mailer.queued))
	}
	if !strings.Contains(mailer.queued[0].Body, "Ana") {
		t.Errorf("expected digest body to mention the student, got:\n%s", mailer.queued[0].Body)
	}
	if mailer.queued[0].Kind != "digest" {
		t.Errorf("expected digest kind, got %q", mailer.queued[0].Kind)
	}
}

func TestRunDigestOnce_NoProfessorsNoEmail(t *testing.T) {
	st, sched, mailer := setup(t)

	addUser(t, st, "ana@aluno.fcmsantacasasp.edu.br", "Ana", auth.RoleStudent)

	if err := sched.RunDigestOnce(context.Background()); err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if len(mailer.queued) != 0 {
		t.Errorf("expected no emails without professors, got %d", len(mailer.queued))
	}
}

func TestRunDigestOnce_FlagsLowAccuracyStudents(t *testing.T) {
	st, sched, mailer := setup(t)
	ctx := context.Background()

	weak := addUser(t, st, "bruno@aluno.fcmsantacasasp.edu.br", "Bruno", auth.RoleStudent)
	addUser(t, st, "prof@fcmsantacasasp.edu.br", "Prof", auth.RoleProfessor)

	for i := 0; i < 4; i++ {
		err := st.SaveSubmission(ctx, &submission.Submission{
			ID: id.New(), UserID: weak.ID, CaseID: "q1", Mode: submission.ModeQuiz,
			Timestamp: time.Now().UTC(),
			Result: submission.Result{
				Verdict: submission.Verdict{Classification: submission.Incorrect},
			},
		})
		if err != nil {
			t.Fatalf("save submission: %v", err)
		}
	}

	if err := sched.RunDigestOnce(ctx); err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if len(mailer.queued) != 2 {
		t.Fatalf("expected digest plus alert, got %d emails", len(mailer.queued))
	}
	if !strings.Contains(mailer.queued[0].Body, "Precisam de atenção") ||
		!strings.Contains(mailer.queued[0].Body, "Bruno") {
		t.Errorf("expected attention section naming Bruno, got:\n%s", mailer.queued[0].Body)
	}
	alert := mailer.queued[1]
	if alert.Kind != "alert" {
		t.Errorf("expected alert kind, got %q", alert.Kind)
	}
	if !strings.Contains(alert.Body, "Bruno") {
		t.Errorf("expected alert naming Bruno, got:\n%s", alert.Body)
	}
}
