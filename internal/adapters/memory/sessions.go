package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/target/hiring-api/internal/core"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

// SessionStore keeps sessions in process memory. Used when Redis is not configured.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	now      func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domainauth.Session), now: time.Now}
}

// Save stores sess until its ExpiresAt.
func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.now().Before(sess.ExpiresAt) {
		return errors.New("session is expired")
	}
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session or ports.ErrSessionNotFound. Expired entries are dropped.
func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a per-process fixed-window counter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

var _ core.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter creates a RateLimiter on the system clock.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithClock(time.Now)
}

// NewRateLimiterWithClock creates a RateLimiter reading time from now.
func NewRateLimiterWithClock(now func() time.Time) *RateLimiter {
	return &RateLimiter{windows: make(map[string]window), now: now}
}

// Allow counts one hit for key and reports whether it fits within limit.
func (l *RateLimiter) Allow(_ context.Context, key string, limit core.RateLimit) (bool, error) {
	if !limit.Enabled() {
		return true, nil
	}
	if key == "" {
		return false, errors.New("rate limit key is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.windows[key]
	if !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(limit.Window)}
	}
	w.count++
	l.windows[key] = w
	return w.count <= limit.Limit, nil
}
