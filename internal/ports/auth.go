// Package ports defines the auth-facing interfaces the services depend on.
// Implementations live in internal/adapters.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore.Get for unknown or expired IDs.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating a login.
type BeginInput struct {
	RedirectURL string
	// LoginHint optionally preselects the account to sign in as.
	LoginHint string
}

// ExchangeInput carries the callback parameters of a login.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider runs a login flow against an identity provider.
type AuthProvider interface {
	// Begin returns the URL to send the browser to plus the state and nonce
	// the callback must echo.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange verifies the callback and returns the signed-in identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists sessions keyed by ID.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper turns identity provider groups into exactly one role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
