// Package redis provides the Redis-backed session store and rate limiter.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

const defaultSessionPrefix = "session:"

// SessionStore keeps sessions as JSON values that expire with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore using the "session:" key prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, defaultSessionPrefix)
}

// NewSessionStoreWithPrefix creates a SessionStore with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

// Save stores sess with a TTL that ends at sess.ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the session or ports.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Key expiry has millisecond granularity; ExpiresAt is authoritative.
	if s.now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session. Unknown IDs are not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
