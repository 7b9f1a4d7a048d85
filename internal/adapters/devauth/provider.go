// Package devauth provides a config-driven AuthProvider for local development.
// It skips the identity provider round trip and signs in one of a fixed set
// of personas, so employer and job seeker flows can be exercised side by side.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Persona is a sign-in identity offered by the provider.
type Persona struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Groups    []string
}

// Config controls the dev auth provider. The first persona is the default.
type Config struct {
	Personas        []Persona
	CallbackPath    string        // default /auth/callback
	SessionDuration time.Duration // default 8h when zero
	Now             func() time.Time
}

// Provider implements ports.AuthProvider. Begin redirects straight to the
// callback with the persona ID as the code; Exchange resolves it.
type Provider struct {
	personas        map[string]Persona
	defaultID       string
	callback        string
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider validates cfg and builds a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.Personas) == 0 {
		return nil, errors.New("dev auth: at least one persona is required")
	}
	p := &Provider{
		personas:        make(map[string]Persona, len(cfg.Personas)),
		callback:        cfg.CallbackPath,
		sessionDuration: cfg.SessionDuration,
		now:             cfg.Now,
	}
	if p.callback == "" {
		p.callback = "/auth/callback"
	}
	if p.sessionDuration <= 0 {
		p.sessionDuration = defaultSessionDuration
	}
	if p.now == nil {
		p.now = time.Now
	}
	for i, persona := range cfg.Personas {
		if persona.UserID == "" {
			return nil, fmt.Errorf("dev auth: persona %d: UserID is required", i)
		}
		if persona.Email == "" {
			return nil, fmt.Errorf("dev auth: persona %q: Email is required", persona.UserID)
		}
		if _, dup := p.personas[persona.UserID]; dup {
			return nil, fmt.Errorf("dev auth: duplicate persona %q", persona.UserID)
		}
		persona.Groups = append([]string(nil), persona.Groups...)
		p.personas[persona.UserID] = persona
	}
	p.defaultID = cfg.Personas[0].UserID
	return p, nil
}

// Begin returns a local callback URL. LoginHint selects a persona.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	id := strings.TrimSpace(in.LoginHint)
	if id == "" {
		id = p.defaultID
	}
	if _, ok := p.personas[id]; !ok {
		return "", "", "", fmt.Errorf("dev auth: unknown persona %q", id)
	}
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {id}, "state": {state}}
	return p.callback + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the persona named by the code.
// State and nonce are checked by the auth service, not here.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	persona, ok := p.personas[in.Code]
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("dev auth: unknown persona %q", in.Code)
	}
	return domainauth.Identity{
		UserID:    persona.UserID,
		FirstName: persona.FirstName,
		LastName:  persona.LastName,
		Email:     persona.Email,
		Groups:    append([]string(nil), persona.Groups...),
		ExpiresAt: p.now().Add(p.sessionDuration),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
