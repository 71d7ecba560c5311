// Package session models admin dashboard sessions as explicit objects with an
// issue time and expiry, validated by a pure function at each access.
package session

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// TTL is how long an admin session stays valid after login.
const TTL = 24 * time.Hour

// Sentinel errors for session handling.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("session not found")
	ErrExpired            = errors.New("session expired")
)

// Session is an issued admin session. It carries its own lifetime; nothing
// else decides whether it is still valid.
type Session struct {
	Token     string
	Admin     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the session is live at the given instant.
func (s Session) ValidAt(now time.Time) bool {
	return !now.Before(s.IssuedAt) && now.Before(s.ExpiresAt)
}

// Store persists sessions keyed by token.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues and validates admin sessions against a shared-secret login.
type Manager struct {
	store    Store
	password string
	now      func() time.Time
}

// NewManager creates a Manager using the given store and admin password.
func NewManager(store Store, password string) *Manager {
	return &Manager{store: store, password: password, now: time.Now}
}

// WithClock overrides the manager's time source. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Login checks the password and issues a new session.
func (m *Manager) Login(ctx context.Context, admin, password string) (*Session, error) {
	if m.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	now := m.now()
	s := Session{
		Token:     uuid.New().String(),
		Admin:     admin,
		IssuedAt:  now,
		ExpiresAt: now.Add(TTL),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return &s, nil
}

// Validate resolves a token to a live session. Expired sessions are deleted
// from the store and reported as ErrExpired.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.ValidAt(m.now()) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrExpired
	}
	return s, nil
}

// Logout removes the session for the given token.
func (m *Manager) Logout(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
