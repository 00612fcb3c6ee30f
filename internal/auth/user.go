package auth

import (
	"strings"
	"time"

	"github.com/helix-ai/backend/internal/id"
)

// Role separates the student experience from the professor dashboard.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

// User is an authenticated account. RA is the institutional registration
// number, mandatory for students. PasswordHash is a bcrypt hash; API
// handlers must expose users through response DTOs, never this struct.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RA           string    `json:"ra,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser builds a user with the role inferred from the email domain.
func NewUser(email, name string, role Role) *User {
	return &User{
		ID:        id.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

// RoleForEmail maps an institutional email domain to a role. Emails from
// any other domain are rejected.
func RoleForEmail(email, studentDomain, professorDomain string) (Role, bool) {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 {
		return "", false
	}
	domain := strings.ToLower(email[at+1:])
	switch domain {
	case strings.ToLower(professorDomain):
		return RoleProfessor, true
	case strings.ToLower(studentDomain):
		return RoleStudent, true
	}
	return "", false
}
