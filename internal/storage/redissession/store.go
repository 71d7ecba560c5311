// Package redissession stores admin sessions in Redis so every API replica
// sees the same logins. Keys expire with the session itself.
package redissession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/teamates/cafe-api/internal/domain/session"
)

const keyPrefix = "cafe:session:"

// Store implements session.Store on top of a Redis client.
type Store struct {
	client *redis.Client
}

// New returns a Store backed by the given client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

type record struct {
	Admin     string    `json:"admin"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Put saves the session under its token. The Redis TTL mirrors the session
// expiry so stale entries vanish without a sweeper.
func (s *Store) Put(ctx context.Context, sess session.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	raw, err := json.Marshal(record{
		Admin:     sess.Admin,
		IssuedAt:  sess.IssuedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	return s.client.Set(ctx, keyPrefix+sess.Token, raw, ttl).Err()
}

// Get loads the session for a token, or session.ErrNotFound.
func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, "unmarshal session")
	}
	return &session.Session{
		Token:     token,
		Admin:     rec.Admin,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Delete removes the session for a token. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
