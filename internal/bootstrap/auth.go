package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/adapters/authroles"
	"github.com/target/hiring-api/internal/adapters/devauth"
	"github.com/target/hiring-api/internal/adapters/oidc"
	"github.com/target/hiring-api/internal/ports"
	"github.com/target/hiring-api/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Sessions ports.SessionStore
	Users    *service.UserService
	Logger   *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("auth service requires a session store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roleMapper := authroles.StaticRoleMapper{
		AdminGroup:     cfg.Auth.AdminGroup,
		EmployerGroup:  cfg.Auth.EmployerGroup,
		JobSeekerGroup: cfg.Auth.JobSeekerGroup,
	}

	var (
		provider ports.AuthProvider
		err      error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		provider, err = buildDevAuthProvider(cfg.Auth.DevAuth)
		if err == nil {
			logger.Warn("dev auth enabled; logins skip the identity provider")
		}
	case config.AuthModeOAuth:
		provider, err = buildOIDCProvider(cfg.Auth.OAuth)
	default:
		err = fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("build auth provider: %w", err)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: cfg.Sessions,
		Roles:    roleMapper,
		Users:    cfg.Users,
	}), nil
}

func buildDevAuthProvider(cfg config.DevAuthConfig) (*devauth.Provider, error) {
	personas, err := cfg.ParsePersonas()
	if err != nil {
		return nil, err
	}
	out := make([]devauth.Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, devauth.Persona{
			UserID:    p.UserID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Groups:    p.Groups,
		})
	}
	return devauth.NewProvider(devauth.Config{Personas: out})
}

func buildOIDCProvider(cfg config.OAuthConfig) (*oidc.Provider, error) {
	return oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scope:        cfg.Scope,
		DiscoveryURL: cfg.DiscoveryURL,
		GroupsPath:   cfg.GroupsPath,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	})
}
