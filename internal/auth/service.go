package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRARequired         = errors.New("registration number required for students")
)

// UserStore is the slice of persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// Claims carried inside an access token.
type Claims struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service registers accounts and issues signed access tokens.
type Service struct {
	store           UserStore
	secret          []byte
	tokenTTL        time.Duration
	studentDomain   string
	professorDomain string
	adminEmails     map[string]bool
}

func NewService(store UserStore, secret string, tokenTTL time.Duration, studentDomain, professorDomain string, adminEmails []string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Service{
		store:           store,
		secret:          []byte(secret),
		tokenTTL:        tokenTTL,
		studentDomain:   studentDomain,
		professorDomain: professorDomain,
		adminEmails:     admins,
	}
}

// Register creates an account for an institutional email. The role comes
// from the email domain, never from the request; configured admin emails
// are promoted on sign-up. Students must supply their RA.
func (s *Service) Register(ctx context.Context, email, name, password, ra string) (*User, error) {
	role, ok := RoleForEmail(email, s.studentDomain, s.professorDomain)
	if !ok {
		return nil, ErrDomainNotAllowed
	}
	if s.adminEmails[strings.ToLower(strings.TrimSpace(email))] {
		role = RoleAdmin
	}
	ra = strings.TrimSpace(ra)
	if role == RoleStudent && ra == "" {
		return nil, ErrRARequired
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := NewUser(email, name, role)
	u.RA = ra
	u.PasswordHash = string(hash)
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns the user plus a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison anyway so lookups for unknown emails
		// take as long as wrong-password attempts.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) issueToken(u *User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: u.Role,
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken parses and validates an access token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
