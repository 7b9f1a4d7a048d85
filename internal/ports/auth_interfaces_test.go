package ports_test

import (
	"testing"

	"github.com/target/hiring-api/internal/adapters/authroles"
	"github.com/target/hiring-api/internal/adapters/devauth"
	"github.com/target/hiring-api/internal/adapters/memory"
	"github.com/target/hiring-api/internal/adapters/oidc"
	redisadapter "github.com/target/hiring-api/internal/adapters/redis"
	mocks "github.com/target/hiring-api/internal/mocks/auth"
	"github.com/target/hiring-api/internal/ports"
)

// Compile-time conformance of every adapter and test double to the auth ports.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*oidc.Provider)(nil)
	var _ ports.AuthProvider = (*devauth.Provider)(nil)
	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)

	var _ ports.SessionStore = (*redisadapter.SessionStore)(nil)
	var _ ports.SessionStore = (*memory.SessionStore)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)

	var _ ports.RoleMapper = authroles.StaticRoleMapper{}
	var _ ports.RoleMapper = mocks.GroupRoleMapper{}
}
