package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	Users    *UserService // Optional: directory sync on login
}

// AuthService orchestrates login: provider exchange, role mapping, user
// directory sync and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	users    *UserService
	now      func() time.Time
}

// ErrSessionExpired is returned by GetSession for a stored but expired session.
var ErrSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		users:    opts.Users,
		now:      time.Now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin starts a login and returns the provider URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL, loginHint string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL, LoginHint: loginHint})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity, maps its groups to a
// role, records the user in the directory and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*domainauth.Session, error) {
	switch {
	case in.Code == "":
		return nil, errors.New("authorization code is required")
	case in.State == "":
		return nil, errors.New("state parameter is required")
	case in.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, State: in.State, Nonce: in.Nonce})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	role := s.roles.Map(identity.Groups)

	if s.users != nil {
		if _, err := s.users.SyncIdentity(ctx, identity, role); err != nil {
			return nil, fmt.Errorf("sync user: %w", err)
		}
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      role,
		ExpiresAt: identity.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	slog.InfoContext(ctx, "login completed", "actor_id", session.UserID, "role", session.Role)
	return &session, nil
}

// GetSession returns a live session. Unknown IDs yield ports.ErrSessionNotFound.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, ports.ErrSessionNotFound
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", err))
		}
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Logout removes a session. An empty ID is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
