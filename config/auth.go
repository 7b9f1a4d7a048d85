package config

import (
	"errors"
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	// RedirectURL defaults to APP_BASE_URL + /auth/callback.
	RedirectURL  string `env:"REDIRECT_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// GroupsPath is a JMESPath expression selecting group names from the ID token claims.
	GroupsPath string `env:"GROUPS_PATH" envDefault:"groups"`
}

// DevAuthConfig lists the identities offered when AUTH_MODE=mock.
// Each persona is "id,first,last,email,group1|group2"; personas are
// separated by ";" and the first one is the default sign-in.
type DevAuthConfig struct {
	Personas []string `env:"PERSONAS" envSeparator:";" envDefault:"dev-employer,Acme,Corp,hiring@acme.example,employers;dev-seeker,Ada,Lovelace,ada@example.com,job-seekers;dev-admin,Dev,Admin,admin@example.com,admins"` //nolint:lll // default persona list
}

// DevPersona is one parsed dev auth identity.
type DevPersona struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Groups    []string
}

// ParsePersonas decodes the persona list.
func (c DevAuthConfig) ParsePersonas() ([]DevPersona, error) {
	out := make([]DevPersona, 0, len(c.Personas))
	for _, raw := range c.Personas {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		if len(parts) != 5 {
			return nil, fmt.Errorf("dev auth persona %q: want id,first,last,email,groups", raw)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			return nil, fmt.Errorf("dev auth persona %q: id is required", raw)
		}
		var groups []string
		for _, g := range strings.Split(parts[4], "|") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		out = append(out, DevPersona{
			UserID:    parts[0],
			FirstName: parts[1],
			LastName:  parts[2],
			Email:     parts[3],
			Groups:    groups,
		})
	}
	if len(out) == 0 {
		return nil, errors.New("dev auth requires at least one persona")
	}
	return out, nil
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Group names mapped to roles. Precedence is admin, employer, job seeker.
	AdminGroup     string `env:"ADMIN_GROUP"      envDefault:"admins"`
	EmployerGroup  string `env:"EMPLOYER_GROUP"   envDefault:"employers"`
	JobSeekerGroup string `env:"JOB_SEEKER_GROUP" envDefault:"job-seekers"`
}

// Sanitize fills the OAuth redirect from the public callback URL when unset.
func (a *AuthConfig) Sanitize(callbackURL string) {
	a.OAuth.RedirectURL = strings.TrimSpace(a.OAuth.RedirectURL)
	if a.OAuth.RedirectURL == "" {
		a.OAuth.RedirectURL = callbackURL
	}
	a.OAuth.GroupsPath = strings.TrimSpace(a.OAuth.GroupsPath)
	if a.OAuth.GroupsPath == "" {
		a.OAuth.GroupsPath = "groups"
	}
}

// Validate checks that the selected mode has what it needs.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeOAuth:
		var missing []string
		if a.OAuth.DiscoveryURL == "" {
			missing = append(missing, "OAUTH_DISCOVERY_URL")
		}
		if a.OAuth.ClientID == "" {
			missing = append(missing, "OAUTH_CLIENT_ID")
		}
		if a.OAuth.ClientSecret == "" {
			missing = append(missing, "OAUTH_CLIENT_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("oauth mode requires %s", strings.Join(missing, ", "))
		}
	case AuthModeMock:
		if _, err := a.DevAuth.ParsePersonas(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown auth mode %q", a.Mode)
	}
	if a.AdminGroup == "" && a.EmployerGroup == "" && a.JobSeekerGroup == "" {
		return errors.New("at least one of ADMIN_GROUP, EMPLOYER_GROUP, JOB_SEEKER_GROUP must be set")
	}
	return nil
}
