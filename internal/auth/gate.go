// Package auth issues and checks the owner session that unlocks the admin
// views. Credentials are static and compared as plain strings; sessions
// never expire. This is a visibility gate for the admin screens, not a
// security boundary.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/storage"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// sessionSlot prefixes the storage slot holding the owner flag
const sessionSlot = "isOwnerLoggedIn"

// Session is the context object handed to admin components. Holding one
// whose Authorized reports true is the only thing they check.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Authorized reports whether the session unlocks the admin views
func (s *Session) Authorized() bool {
	return s != nil && s.Token != ""
}

// Gate is the access-control collaborator: it turns credentials into
// sessions and back
type Gate struct {
	storage  storage.Storage
	username string
	password string
	logger   *slog.Logger
	newToken func() string
}

// NewGate creates a gate accepting exactly one username/password pair
func NewGate(s storage.Storage, username, password string, logger *slog.Logger) *Gate {
	return &Gate{
		storage:  s,
		username: username,
		password: password,
		logger:   logger,
		newToken: func() string { return uuid.New().String() },
	}
}

func key(token string) string {
	return sessionSlot + ":" + token
}

// Login checks the credentials and stores a new session
func (g *Gate) Login(ctx context.Context, username, password string) (*Session, error) {
	if username != g.username || password != g.password {
		g.logger.Warn("admin login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	session := &Session{Token: g.newToken(), Username: username}
	if err := g.storage.Set(ctx, key(session.Token), username); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	g.logger.Info("admin logged in", "username", username)
	return session, nil
}

// Logout forgets the session. Unknown tokens are ignored.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.storage.Delete(ctx, key(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	g.logger.Info("admin logged out")
	return nil
}

// Lookup returns the session for token, or ErrUnauthorized
func (g *Gate) Lookup(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}

	username, ok, err := g.storage.Get(ctx, key(token))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return &Session{Token: token, Username: username}, nil
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s.Authorized()
}
