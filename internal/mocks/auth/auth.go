// Package auth contains hand-written test doubles for the auth ports.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleMapper   = GroupRoleMapper{}
)

// MockAuthProvider simulates an IdP with deterministic state and nonce values.
// Exchange returns Identities[code] when present, else DefaultUser.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity
	Identities  map[string]domainauth.Identity

	mu        sync.Mutex
	calls     int
	exchanges []ports.ExchangeInput
}

// NewMockAuthProvider creates a MockAuthProvider signing in a job seeker.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"job-seekers"},
		},
	}
}

// Begin returns AuthURL with state-N and nonce-N for the Nth call.
func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

// Exchange records the input and returns an identity valid for one hour.
func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	m.mu.Lock()
	m.exchanges = append(m.exchanges, in)
	m.mu.Unlock()

	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	id, ok := m.Identities[in.Code]
	if !ok {
		id = m.DefaultUser
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = time.Now().Add(time.Hour)
	}
	return id, nil
}

// Exchanges returns the inputs Exchange was called with.
func (m *MockAuthProvider) Exchanges() []ports.ExchangeInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.ExchangeInput(nil), m.exchanges...)
}

// MemorySessionStore is a session store for unit tests. It ignores expiry
// so tests can hold sessions across fake clocks. SaveErr forces Save to fail.
type MemorySessionStore struct {
	SaveErr error

	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// GroupRoleMapper returns the role of the first group found in Roles, else guest.
type GroupRoleMapper struct {
	Roles map[string]domainauth.Role
}

func (m GroupRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if r, ok := m.Roles[g]; ok {
			return r
		}
	}
	return domainauth.RoleGuest
}
