package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/auth"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	service *auth.Service
	users   auth.UserStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *auth.Service, users auth.UserStore) *AuthHandler {
	return &AuthHandler{service: service, users: users}
}

// CredentialsRequest carries an email/password pair.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the account it belongs
// to.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrPasswordTooShort):
		response.BadRequest(w, err)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		response.Conflict(w, err)
		return
	case err != nil:
		response.InternalError(w, err)
		return
	}

	response.Created(w, user)
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		response.Unauthorized(w, err)
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, LoginResponse{Token: token, User: user})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if user == nil {
		response.NotFound(w, errors.New("account not found"))
		return
	}

	response.Success(w, user)
}
