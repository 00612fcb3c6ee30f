package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/id"
	"github.com/helix-ai/backend/internal/store"
	"github.com/helix-ai/backend/internal/tutor"
)

func openStores(t *testing.T) map[string]store.Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := store.NewSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	jsonFile, err := store.NewJSONFile(filepath.Join(dir, "test.json"))
	if err != nil {
		t.Fatalf("open json store: %v", err)
	}
	t.Cleanup(func() { jsonFile.Close() })

	return map[string]store.Store{"sqlite": sqlite, "jsonfile": jsonFile}
}

func newStudent(email string) *auth.User {
	u := auth.NewUser(email, "Test Student", auth.RoleStudent)
	u.PasswordHash = "$2a$10$fakehashfortestingonly"
	return u
}

func newSubmission(userID, caseID string, correct bool, points float64, at time.Time) *submission.Submission {
	cls := submission.Incorrect
	if correct {
		cls = submission.Correct
	}
	return &submission.Submission{
		ID:              id.New(),
		UserID:          userID,
		CaseID:          caseID,
		Mode:            submission.ModeQuiz,
		Answer:          "resposta do aluno",
		DurationSeconds: 42,
		Timestamp:       at,
		Result: submission.Result{
			Verdict:      submission.Verdict{Classification: cls, IsCorrect: correct, Feedback: "ok"},
			PointsGained: points,
		},
	}
}

func TestUserLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newStudent("ana@aluno.fcmsantacasasp.edu.br")

			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("create user: %v", err)
			}

			got, err := s.GetUserByEmail(ctx, "ANA@aluno.fcmsantacasasp.edu.br")
			if err != nil {
				t.Fatalf("get by email: %v", err)
			}
			if got.ID != u.ID || got.Role != auth.RoleStudent {
				t.Errorf("unexpected user %+v", got)
			}
			if got.PasswordHash != u.PasswordHash {
				t.Error("expected password hash to round-trip")
			}

			if err := s.CreateUser(ctx, newStudent("ana@aluno.fcmsantacasasp.edu.br")); !errors.Is(err, store.ErrDuplicate) {
				t.Errorf("expected ErrDuplicate for repeated email, got %v", err)
			}

			if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSubmissionsAreAppendOnlyAndOrdered(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newStudent("bruno@aluno.fcmsantacasasp.edu.br")
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("create user: %v", err)
			}

			base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				sub := newSubmission(u.ID, "q1", i%2 == 0, float64(i), base.Add(time.Duration(i)*time.Minute))
				if err := s.SaveSubmission(ctx, sub); err != nil {
					t.Fatalf("save submission: %v", err)
				}
			}

			subs, err := s.ListSubmissionsByUser(ctx, u.ID)
			if err != nil {
				t.Fatalf("list submissions: %v", err)
			}
			if len(subs) != 3 {
				t.Fatalf("expected 3 submissions, got %d", len(subs))
			}
			for i := 1; i < len(subs); i++ {
				if subs[i].Timestamp.Before(subs[i-1].Timestamp) {
					t.Error("expected submissions ordered by timestamp")
				}
			}
			if subs[0].Result.Classification != submission.Correct {
				t.Errorf("expected result to round-trip, got %+v", subs[0].Result)
			}
		})
	}
}

func TestClinicalAnswerRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newStudent("carla@aluno.fcmsantacasasp.edu.br")
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("create user: %v", err)
			}

			sub := newSubmission(u.ID, "c1", true, 18, time.Now().UTC())
			sub.Mode = submission.ModeClinical
			sub.ClinicalAnswer = &submission.ClinicalAnswer{
				Diagnosis:      "anemia ferropriva",
				RequestedExams: []string{"Hemograma", "Ferritina"},
				TreatmentPlan:  "sulfato ferroso",
			}
			sub.Result.Breakdown = submission.Breakdown{Diagnosis: 10, Exams: 6, Plan: 2}

			if err := s.SaveSubmission(ctx, sub); err != nil {
				t.Fatalf("save submission: %v", err)
			}

			subs, err := s.ListSubmissionsByUser(ctx, u.ID)
			if err != nil {
				t.Fatalf("list submissions: %v", err)
			}
			got := subs[0]
			if got.ClinicalAnswer == nil || got.ClinicalAnswer.Diagnosis != "anemia ferropriva" {
				t.Errorf("expected clinical answer to round-trip, got %+v", got.ClinicalAnswer)
			}
			if got.Result.Breakdown.Diagnosis != 10 {
				t.Errorf("expected breakdown to round-trip, got %+v", got.Result.Breakdown)
			}
		})
	}
}

func TestProgressUpsert(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.GetProgress(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			p := progress.New("u1")
			p.Apply(progress.Outcome{PointsGained: 130, StreakCounts: true})
			if err := s.SaveProgress(ctx, p); err != nil {
				t.Fatalf("save progress: %v", err)
			}

			p.Apply(progress.Outcome{PointsGained: 200, StreakCounts: true})
			if err := s.SaveProgress(ctx, p); err != nil {
				t.Fatalf("update progress: %v", err)
			}

			got, err := s.GetProgress(ctx, "u1")
			if err != nil {
				t.Fatalf("get progress: %v", err)
			}
			if got.Score != 330 || got.Streak != 2 || got.UnlockedLevel != 3 {
				t.Errorf("unexpected progress %+v", got)
			}
		})
	}
}

func TestInteractionsNewestFirstWithLimit(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
			for i := 0; i < 5; i++ {
				it := &tutor.Interaction{
					ID:                  id.New(),
					UserID:              "u1",
					CaseID:              "c1_anemia_ferropriva",
					Question:            "pergunta",
					Reply:               "resposta",
					ResponseTimeSeconds: 1.5,
					Timestamp:           base.Add(time.Duration(i) * time.Minute),
				}
				if err := s.SaveInteraction(ctx, it); err != nil {
					t.Fatalf("save interaction: %v", err)
				}
			}

			items, err := s.ListInteractionsByUser(ctx, "u1", 3)
			if err != nil {
				t.Fatalf("list interactions: %v", err)
			}
			if len(items) != 3 {
				t.Fatalf("expected 3 interactions, got %d", len(items))
			}
			if !items[0].Timestamp.After(items[1].Timestamp) {
				t.Error("expected newest-first ordering")
			}
			if items[0].CaseID != "c1_anemia_ferropriva" || items[0].ResponseTimeSeconds != 1.5 {
				t.Errorf("expected case link and response time to round-trip, got %+v", items[0])
			}
		})
	}
}

func TestPurgeUserData(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newStudent("davi@aluno.fcmsantacasasp.edu.br")
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("create user: %v", err)
			}
			if err := s.SaveSubmission(ctx, newSubmission(u.ID, "q1", true, 1, time.Now().UTC())); err != nil {
				t.Fatalf("save submission: %v", err)
			}
			if err := s.SaveProgress(ctx, progress.New(u.ID)); err != nil {
				t.Fatalf("save progress: %v", err)
			}

			if err := s.PurgeUserData(ctx, u.ID); err != nil {
				t.Fatalf("purge: %v", err)
			}

			subs, err := s.ListSubmissionsByUser(ctx, u.ID)
			if err != nil {
				t.Fatalf("list submissions: %v", err)
			}
			if len(subs) != 0 {
				t.Errorf("expected no submissions after purge, got %d", len(subs))
			}
			if _, err := s.GetProgress(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected progress gone, got %v", err)
			}
			if _, err := s.GetUser(ctx, u.ID); err != nil {
				t.Errorf("expected account to survive purge, got %v", err)
			}
		})
	}
}

func TestJSONFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := store.NewJSONFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	u := newStudent("eva@aluno.fcmsantacasasp.edu.br")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := store.NewJSONFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("expected persisted user, got %+v", got)
	}
}
