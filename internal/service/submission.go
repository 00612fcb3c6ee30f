// internal/service/submission.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/grader"
	"github.com/helix-ai/backend/internal/id"
	"github.com/helix-ai/backend/internal/scoring"
	"github.com/helix-ai/backend/internal/store"
)

var (
	ErrUnknownItem = errors.New("unknown question or case")
	ErrLevelLocked = errors.New("level not yet unlocked")
)

// SubmitRequest contains everything needed to grade one answer.
type SubmitRequest struct {
	UserID          string
	ItemID          string
	Mode            submission.Mode
	Answer          string
	Clinical        *submission.ClinicalAnswer
	DurationSeconds float64
}

// SubmitResult is what the student sees right after answering.
type SubmitResult struct {
	Submission *submission.Submission
	Progress   *progress.UserProgress
	LeveledUp  bool
}

// SubmissionService runs the grade → score → progress pipeline for each
// answer. Grading is synchronous: the student waits for their verdict.
// Progress updates for the same user are serialized so two concurrent
// answers cannot race the snapshot.
type SubmissionService struct {
	store     store.Store
	grader    grader.Grader
	questions *question.Catalog
	cases     *clinicalcase.Catalog
	logger    *slog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex // userID → progress lock
}

func NewSubmissionService(s store.Store, g grader.Grader, questions *question.Catalog, cases *clinicalcase.Catalog, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		store:     s,
		grader:    g,
		questions: questions,
		cases:     cases,
		logger:    logger,
		users:     make(map[string]*sync.Mutex),
	}
}

func (ss *SubmissionService) userLock(userID string) *sync.Mutex {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	l, ok := ss.users[userID]
	if !ok {
		l = &sync.Mutex{}
		ss.users[userID] = l
	}
	return l
}

// Submit grades an answer, scores it, advances the user's progress and
// records everything. A grading-service outage still records the
// submission with an ERROR verdict and leaves progress untouched.
func (ss *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	gradeReq, maxPoints, err := ss.resolveItem(req)
	if err != nil {
		return nil, err
	}

	lock := ss.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	prog, err := ss.loadProgress(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := ss.checkLevel(req, prog.UnlockedLevel); err != nil {
		return nil, err
	}

	ev := ss.grader.Evaluate(ctx, gradeReq)

	in := scoring.Input{
		Mode:          req.Mode,
		Evaluation:    ev,
		CurrentStreak: prog.Streak,
	}
	if req.Mode == submission.ModeClinical {
		in.CaseMax = maxPoints
	} else {
		in.QuestionMax = maxPoints
	}
	result := scoring.Compute(in)

	sub := &submission.Submission{
		ID:              id.New(),
		UserID:          req.UserID,
		CaseID:          req.ItemID,
		Mode:            req.Mode,
		Answer:          req.Answer,
		ClinicalAnswer:  req.Clinical,
		DurationSeconds: req.DurationSeconds,
		Result:          result,
		Timestamp:       time.Now().UTC(),
	}

	levelBefore := prog.UnlockedLevel
	if result.Classification != submission.Error {
		prog.Apply(progress.Outcome{
			PointsGained: result.PointsGained,
			StreakCounts: result.StreakCounts,
		})
	}

	if err := ss.store.SaveSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	if result.Classification != submission.Error {
		if err := ss.store.SaveProgress(ctx, prog); err != nil {
			return nil, fmt.Errorf("save progress: %w", err)
		}
	}

	ss.logger.Info("submission graded",
		"user_id", req.UserID,
		"item_id", req.ItemID,
		"mode", req.Mode,
		"classification", result.Classification,
		"points", result.PointsGained,
	)

	return &SubmitResult{
		Submission: sub,
		Progress:   prog,
		LeveledUp:  prog.UnlockedLevel > levelBefore,
	}, nil
}

func (ss *SubmissionService) resolveItem(req SubmitRequest) (grader.Request, float64, error) {
	if req.Mode == submission.ModeClinical {
		c, ok := ss.cases.Get(req.ItemID)
		if !ok {
			return grader.Request{}, 0, ErrUnknownItem
		}
		return grader.Request{
			Mode:     submission.ModeClinical,
			Case:     &c,
			Clinical: req.Clinical,
		}, c.MaxPoints(), nil
	}

	q, ok := ss.questions.Get(req.ItemID)
	if !ok {
		return grader.Request{}, 0, ErrUnknownItem
	}
	return grader.Request{
		Mode:     submission.ModeQuiz,
		Question: &q,
		Answer:   req.Answer,
	}, q.MaxPoints, nil
}

func (ss *SubmissionService) checkLevel(req SubmitRequest, unlocked int) error {
	if req.Mode == submission.ModeClinical {
		c, _ := ss.cases.Get(req.ItemID)
		if c.Level > unlocked {
			return ErrLevelLocked
		}
		return nil
	}
	q, _ := ss.questions.Get(req.ItemID)
	if !q.AvailableAt(unlocked) {
		return ErrLevelLocked
	}
	return nil
}

func (ss *SubmissionService) loadProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	prog, err := ss.store.GetProgress(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return progress.New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return prog, nil
}

// Progress returns the user's current snapshot, a fresh one if they have
// never answered.
func (ss *SubmissionService) Progress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return ss.loadProgress(ctx, userID)
}

// NextQuestion picks an unanswered question at or below the user's level.
// Questions already answered correctly are skipped; once everything has
// been answered the rotation starts over.
func (ss *SubmissionService) NextQuestion(ctx context.Context, userID string) (question.Question, error) {
	prog, err := ss.loadProgress(ctx, userID)
	if err != nil {
		return question.Question{}, err
	}
	used, err := ss.answeredCorrectly(ctx, userID, submission.ModeQuiz)
	if err != nil {
		return question.Question{}, err
	}
	q, ok := ss.questions.PickNext(prog.UnlockedLevel, used)
	if !ok {
		return question.Question{}, ErrUnknownItem
	}
	return q, nil
}

// NextCase picks an unsolved clinical case at or below the user's level.
func (ss *SubmissionService) NextCase(ctx context.Context, userID string) (clinicalcase.ClinicalCase, error) {
	prog, err := ss.loadProgress(ctx, userID)
	if err != nil {
		return clinicalcase.ClinicalCase{}, err
	}
	used, err := ss.answeredCorrectly(ctx, userID, submission.ModeClinical)
	if err != nil {
		return clinicalcase.ClinicalCase{}, err
	}
	c, ok := ss.cases.PickNext(prog.UnlockedLevel, used)
	if !ok {
		return clinicalcase.ClinicalCase{}, ErrUnknownItem
	}
	return c, nil
}

func (ss *SubmissionService) answeredCorrectly(ctx context.Context, userID string, mode submission.Mode) (map[string]bool, error) {
	subs, err := ss.store.ListSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool)
	for _, s := range subs {
		if s.Mode == mode && s.Result.IsCorrect {
			used[s.CaseID] = true
		}
	}
	return used, nil
}
