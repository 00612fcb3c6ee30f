package store

import (
	"context"
	"errors"

	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/tutor"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated,
	// e.g. registering an email twice.
	ErrDuplicate = errors.New("already exists")
)

// Store persists accounts, the append-only submission log, progress
// snapshots and tutor interactions. Submissions are never updated or
// deleted individually; PurgeUserData is the only destructive operation.
type Store interface {
	CreateUser(ctx context.Context, u *auth.User) error
	GetUser(ctx context.Context, id string) (*auth.User, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	ListUsers(ctx context.Context) ([]*auth.User, error)

	SaveSubmission(ctx context.Context, s *submission.Submission) error
	ListSubmissionsByUser(ctx context.Context, userID string) ([]submission.Submission, error)
	ListSubmissions(ctx context.Context) ([]submission.Submission, error)

	GetProgress(ctx context.Context, userID string) (*progress.UserProgress, error)
	SaveProgress(ctx context.Context, p *progress.UserProgress) error

	SaveInteraction(ctx context.Context, it *tutor.Interaction) error
	ListInteractionsByUser(ctx context.Context, userID string, limit int) ([]tutor.Interaction, error)

	PurgeUserData(ctx context.Context, userID string) error

	Close() error
}
