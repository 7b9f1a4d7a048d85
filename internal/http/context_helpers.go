package httpx

import (
	"context"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/authz"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// ActorFromContext returns the acting identity of the request. Without a
// session it is an anonymous guest, which the guard rejects.
func ActorFromContext(ctx context.Context) authz.Actor {
	s, _ := GetUserSessionFromContext(ctx)
	return authz.ActorFromSession(s)
}
