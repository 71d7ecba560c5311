package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/teamates/cafe-api/internal/domain/session"
)

// SessionHeader carries the admin session token on every admin request.
const SessionHeader = "X-Session-Token"

type contextKey struct{ name string }

var adminKey = contextKey{"admin"}

// adminFrom returns the admin name attached by RequireSession, or "".
func adminFrom(ctx context.Context) string {
	admin, _ := ctx.Value(adminKey).(string)
	return admin
}

// RequireSession authenticates admin requests against the session store and
// attaches the admin identity to the request context.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		s, err := h.sessions.Validate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrExpired):
				writeError(w, http.StatusUnauthorized, "session expired")
			case errors.Is(err, session.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "missing or invalid session token")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey, s.Admin)))
	})
}

// Login checks the admin password and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Admin    string `json:"admin"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Admin == "" {
		req.Admin = "admin"
	}

	s, err := h.sessions.Login(r.Context(), req.Admin, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		Admin     string    `json:"admin"`
		IssuedAt  time.Time `json:"issued_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}{s.Token, s.Admin, s.IssuedAt, s.ExpiresAt})
}

// Logout revokes the caller's session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), r.Header.Get(SessionHeader)); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
