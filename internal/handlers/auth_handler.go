package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/middleware"
)

// SessionGate issues and revokes owner sessions
type SessionGate interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// WorkspaceDiscarder drops per-session admin state
type WorkspaceDiscarder interface {
	Discard(key string)
}

// AuthHandler handles owner login and logout
type AuthHandler struct {
	gate       SessionGate
	workspaces WorkspaceDiscarder
	logger     *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gate SessionGate, workspaces WorkspaceDiscarder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		gate:       gate,
		workspaces: workspaces,
		logger:     logger,
	}
}

// LoginRequest is the body of POST /api/admin/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for the admin routes
type LoginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	session, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, LoginResponse{Token: session.Token}, h.logger)
}

// Logout handles POST /api/admin/logout
// Always succeeds; an unknown or missing token is already logged out
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)

	if err := h.gate.Logout(r.Context(), token); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if token != "" {
		h.workspaces.Discard(token)
	}

	w.WriteHeader(http.StatusNoContent)
}
