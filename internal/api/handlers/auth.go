package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/auth"
)

// AuthHandler serves account and session endpoints.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	Account auth.Account `json:"account"`
	Token   string       `json:"token"`
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	account, token, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		response.Conflict(w, err)
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrWeakPassword):
		response.BadRequest(w, err)
	case err != nil:
		response.InternalError(w, err)
	default:
		response.Created(w, authResponse{Account: account, Token: token})
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	account, token, err := h.service.Login(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Unauthorized(w, err)
	case err != nil:
		response.InternalError(w, err)
	default:
		response.Success(w, authResponse{Account: account, Token: token})
	}
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		response.Unauthorized(w, errors.New("missing bearer token"))
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		response.Unauthorized(w, errors.New("missing bearer token"))
		return
	}

	account, err := h.service.Restore(r.Context(), token)
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		response.Unauthorized(w, err)
	case err != nil:
		response.InternalError(w, err)
	default:
		response.Success(w, account)
	}
}

// BearerToken extracts the token from an Authorization header, falling
// back to the token query parameter for websocket clients.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
