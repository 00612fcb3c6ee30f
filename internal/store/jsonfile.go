package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/tutor"
)

// JSONFileStore is the fallback persistence used when SQLite cannot be
// opened (read-only volumes, missing CGO-free driver support on exotic
// platforms). Everything lives in memory and is flushed to a single JSON
// file after each mutation. It is not meant for large cohorts.
type JSONFileStore struct {
	mu   sync.RWMutex
	path string
	data jsonFileData
}

// Compile-time check: *JSONFileStore satisfies the Store interface.
var _ Store = (*JSONFileStore)(nil)

type jsonFileData struct {
	Users        []*auth.User                      `json:"users"`
	Submissions  []submission.Submission           `json:"submissions"`
	Progress     map[string]*progress.UserProgress `json:"progress"`
	Interactions []tutor.Interaction               `json:"interactions"`
}

func NewJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{
		path: path,
		data: jsonFileData{Progress: make(map[string]*progress.UserProgress)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("corrupt store file %s: %w", path, err)
		}
	}
	if s.data.Progress == nil {
		s.data.Progress = make(map[string]*progress.UserProgress)
	}
	return s, nil
}

func (s *JSONFileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked writes atomically via a temp file so a crash mid-write
// cannot corrupt the store.
func (s *JSONFileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONFileStore) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.Users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	cp := *u
	s.data.Users = append(s.data.Users, &cp)
	return s.flushLocked()
}

func (s *JSONFileStore) GetUser(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFileStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFileStore) ListUsers(_ context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*auth.User, 0, len(s.data.Users))
	for _, u := range s.data.Users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *JSONFileStore) SaveSubmission(_ context.Context, sub *submission.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Submissions = append(s.data.Submissions, *sub)
	return s.flushLocked()
}

func (s *JSONFileStore) ListSubmissionsByUser(_ context.Context, userID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var subs []submission.Submission
	for _, sub := range s.data.Submissions {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	sortSubmissions(subs)
	return subs, nil
}

func (s *JSONFileStore) ListSubmissions(_ context.Context) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]submission.Submission, len(s.data.Submissions))
	copy(subs, s.data.Submissions)
	sortSubmissions(subs)
	return subs, nil
}

func sortSubmissions(subs []submission.Submission) {
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Timestamp.Before(subs[j].Timestamp) })
}

func (s *JSONFileStore) GetProgress(_ context.Context, userID string) (*progress.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.Progress[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *JSONFileStore) SaveProgress(_ context.Context, p *progress.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.data.Progress[p.UserID] = &cp
	return s.flushLocked()
}

func (s *JSONFileStore) SaveInteraction(_ context.Context, it *tutor.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Interactions = append(s.data.Interactions, *it)
	return s.flushLocked()
}

func (s *JSONFileStore) ListInteractionsByUser(_ context.Context, userID string, limit int) ([]tutor.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []tutor.Interaction
	for i := len(s.data.Interactions) - 1; i >= 0 && len(items) < limit; i-- {
		if s.data.Interactions[i].UserID == userID {
			items = append(items, s.data.Interactions[i])
		}
	}
	return items, nil
}

func (s *JSONFileStore) PurgeUserData(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.data.Submissions[:0]
	for _, sub := range s.data.Submissions {
		if sub.UserID != userID {
			kept = append(kept, sub)
		}
	}
	s.data.Submissions = kept

	keptIt := s.data.Interactions[:0]
	for _, it := range s.data.Interactions {
		if it.UserID != userID {
			keptIt = append(keptIt, it)
		}
	}
	s.data.Interactions = keptIt

	delete(s.data.Progress, userID)
	return s.flushLocked()
}
