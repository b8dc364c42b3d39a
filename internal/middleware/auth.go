package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
)

// SessionLookup resolves a bearer token to an owner session
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*auth.Session, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header. Browsers cannot set headers on WebSocket upgrades, so a
// "token" query parameter is accepted on those.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// RequireAdmin rejects requests without a known owner session and puts
// the session in the request context for the admin handlers
func RequireAdmin(gate SessionLookup, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeUnauthorized(w, "Unauthorized: session token required")
				return
			}

			session, err := gate.Lookup(r.Context(), token)
			if err != nil {
				if !errors.Is(err, apperr.ErrUnauthorized) {
					logger.Error("failed to look up session", "error", err)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
					return
				}
				writeUnauthorized(w, "Unauthorized: unknown session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
