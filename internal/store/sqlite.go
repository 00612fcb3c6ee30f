package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/progress"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/tutor"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    ra TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    case_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    answer TEXT NOT NULL,
    clinical_answer TEXT,
    duration_seconds REAL NOT NULL,
    result TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, timestamp);

CREATE TABLE IF NOT EXISTS user_progress (
    user_id TEXT PRIMARY KEY,
    score REAL NOT NULL,
    streak INTEGER NOT NULL,
    unlocked_level INTEGER NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS chat_interactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    case_id TEXT NOT NULL DEFAULT '',
    topic TEXT NOT NULL,
    question TEXT NOT NULL,
    reply TEXT NOT NULL,
    response_time_seconds REAL NOT NULL DEFAULT 0,
    timestamp TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_interactions_user ON chat_interactions(user_id, timestamp);
`

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Users
// ============================================================================

func (s *SQLiteStore) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, ra, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Name, u.RA, string(u.Role), u.PasswordHash, u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, email, name, ra, role, password_hash, created_at FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, email, name, ra, role, password_hash, created_at FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email))))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	var role, createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.RA, &role, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, email, name, ra, role, password_hash, created_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		var u auth.User
		var role, createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.RA, &role, &u.PasswordHash, &createdAt); err != nil {
			return nil, err
		}
		u.Role = auth.Role(role)
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		users = append(users, &u)
	}
	return users, rows.Err()
}

// ============================================================================
// Submissions
// ============================================================================

func (s *SQLiteStore) SaveSubmission(ctx context.Context, sub *submission.Submission) error {
	resultJSON, err := json.Marshal(sub.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var clinicalJSON []byte
	if sub.ClinicalAnswer != nil {
		clinicalJSON, err = json.Marshal(sub.ClinicalAnswer)
		if err != nil {
			return fmt.Errorf("marshal clinical answer: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, case_id, mode, answer, clinical_answer, duration_seconds, result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.CaseID, string(sub.Mode), sub.Answer,
		nullableString(clinicalJSON), sub.DurationSeconds, string(resultJSON),
		sub.Timestamp.Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, case_id, mode, answer, clinical_answer, duration_seconds, result, timestamp
		FROM submissions WHERE user_id = ? ORDER BY timestamp`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, case_id, mode, answer, clinical_answer, duration_seconds, result, timestamp
		FROM submissions ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows *sql.Rows) ([]submission.Submission, error) {
	var subs []submission.Submission
	for rows.Next() {
		var sub submission.Submission
		var mode, result, timestamp string
		var clinical sql.NullString
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.CaseID, &mode, &sub.Answer,
			&clinical, &sub.DurationSeconds, &result, &timestamp); err != nil {
			return nil, err
		}
		sub.Mode = submission.Mode(mode)
		if err := json.Unmarshal([]byte(result), &sub.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result for %s: %w", sub.ID, err)
		}
		if clinical.Valid && clinical.String != "" {
			var ca submission.ClinicalAnswer
			if err := json.Unmarshal([]byte(clinical.String), &ca); err != nil {
				return nil, fmt.Errorf("unmarshal clinical answer for %s: %w", sub.ID, err)
			}
			sub.ClinicalAnswer = &ca
		}
		sub.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// ============================================================================
// Progress
// ============================================================================

func (s *SQLiteStore) GetProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	var p progress.UserProgress
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, score, streak, unlocked_level, updated_at FROM user_progress WHERE user_id = ?",
		userID).Scan(&p.UserID, &p.Score, &p.Streak, &p.UnlockedLevel, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &p, nil
}

func (s *SQLiteStore) SaveProgress(ctx context.Context, p *progress.UserProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, score, streak, unlocked_level, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			score = excluded.score,
			streak = excluded.streak,
			unlocked_level = excluded.unlocked_level,
			updated_at = excluded.updated_at`,
		p.UserID, p.Score, p.Streak, p.UnlockedLevel, p.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

// ============================================================================
// Chat interactions
// ============================================================================

func (s *SQLiteStore) SaveInteraction(ctx context.Context, it *tutor.Interaction) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_interactions (id, user_id, case_id, topic, question, reply, response_time_seconds, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		it.ID, it.UserID, it.CaseID, it.Topic, it.Question, it.Reply, it.ResponseTimeSeconds, it.Timestamp.Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) ListInteractionsByUser(ctx context.Context, userID string, limit int) ([]tutor.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, case_id, topic, question, reply, response_time_seconds, timestamp
		FROM chat_interactions WHERE user_id = ?
		ORDER BY timestamp DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []tutor.Interaction
	for rows.Next() {
		var it tutor.Interaction
		var timestamp string
		if err := rows.Scan(&it.ID, &it.UserID, &it.CaseID, &it.Topic, &it.Question, &it.Reply, &it.ResponseTimeSeconds, &timestamp); err != nil {
			return nil, err
		}
		it.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ============================================================================
// Admin
// ============================================================================

// PurgeUserData removes everything recorded for one user in a single
// transaction. The account row itself is kept.
func (s *SQLiteStore) PurgeUserData(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM submissions WHERE user_id = ?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_interactions WHERE user_id = ?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_progress WHERE user_id = ?", userID); err != nil {
		return err
	}

	return tx.Commit()
}
