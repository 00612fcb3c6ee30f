package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type RegisterRequest struct {
	Email    string `json:"email" example:"maria@aluno.fcmsantacasasp.edu.br"`
	Name     string `json:"name" example:"Maria Souza"`
	Password string `json:"password" example:"correta-batata-42"`
	RA       string `json:"ra,omitempty" example:"2024-10382"`
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" example:"maria@aluno.fcmsantacasasp.edu.br"`
	Password string `json:"password" example:"correta-batata-42"`
}

// UserResponse is the public view of an account. The password hash never
// leaves the store through this type.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RA        string    `json:"ra,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *auth.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		RA:        u.RA,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// register creates a new account.
// @Summary      Register an account
// @Description  Create an account for an institutional email. The role is inferred from the email domain.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Account to create"
// @Success      201   {object}  UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string  "email domain not allowed"
// @Failure      409   {object}  map[string]string  "email already registered"
// @Router       /auth/register [post]
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password, req.RA)
	switch {
	case errors.Is(err, auth.ErrDomainNotAllowed):
		respondError(w, http.StatusForbidden, "email domain not allowed")
		return
	case errors.Is(err, store.ErrDuplicate):
		respondError(w, http.StatusConflict, "email already registered")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(u))
}

// login exchanges credentials for an access token.
// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  LoginResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserResponse(u)})
}

// me returns the authenticated account.
// @Summary      Current account
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	u, err := h.store.GetUser(r.Context(), claims.Subject)
	if h.handleStoreError(w, err, "user") {
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}
