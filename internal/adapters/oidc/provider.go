// Package oidc implements ports.AuthProvider against an OpenID Connect
// identity provider using the authorization code flow.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

// DefaultGroupsPath reads a top-level "groups" claim.
const DefaultGroupsPath = "groups"

// Provider implements ports.AuthProvider using OIDC/OAuth2.
type Provider struct {
	config   *oauth2.Config
	provider *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	groups   jmespath.JMESPath
	client   *http.Client
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	// GroupsPath is a JMESPath expression evaluated against the ID token
	// claims (and userinfo when the token has none) to find group names.
	GroupsPath string
	HTTPClient *http.Client
}

// DiscoveryDocument is the subset of the discovery document go-oidc needs.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider runs discovery and builds a Provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	path := strings.TrimSpace(cfg.GroupsPath)
	if path == "" {
		path = DefaultGroupsPath
	}
	groups, err := jmespath.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compile groups path %q: %w", path, err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), client)
	issuer := strings.TrimSuffix(strings.TrimSuffix(cfg.DiscoveryURL, "/"), "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		provider: op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		groups:   groups,
		client:   client,
		now:      time.Now,
	}, nil
}

// Begin builds the authorization URL with fresh state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	opts := []oauth2.AuthCodeOption{gooidc.Nonce(nonce)}
	if hint := strings.TrimSpace(in.LoginHint); hint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", hint))
	} else {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "select_account"))
	}
	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange redeems the code, verifies the ID token and maps its claims.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	raw, err := idTokenFrom(token)
	if err != nil {
		return domainauth.Identity{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	var claims map[string]any
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	id := p.identityFromClaims(claims)

	if id.Email == "" || len(id.Groups) == 0 {
		info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", err)
		}
		var extra map[string]any
		if err := info.Claims(&extra); err != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", err)
		}
		id = mergeIdentity(id, p.identityFromClaims(extra))
	}
	if id.UserID == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	id.ExpiresAt = p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		id.ExpiresAt = token.Expiry
	}
	return id, nil
}

// identityFromClaims maps standard OIDC claims. Missing given/family names
// fall back to splitting "name".
func (p *Provider) identityFromClaims(claims map[string]any) domainauth.Identity {
	id := domainauth.Identity{
		UserID:    stringClaim(claims, "sub"),
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		Email:     stringClaim(claims, "email"),
		Groups:    p.groupsFrom(claims),
	}
	if id.FirstName == "" && id.LastName == "" {
		first, last, _ := strings.Cut(strings.TrimSpace(stringClaim(claims, "name")), " ")
		id.FirstName, id.LastName = first, strings.TrimSpace(last)
	}
	return id
}

// groupsFrom evaluates the groups path. A string result is one group;
// non-string list entries are skipped.
func (p *Provider) groupsFrom(claims map[string]any) []string {
	v, err := p.groups.Search(claims)
	if err != nil || v == nil {
		return nil
	}
	switch g := v.(type) {
	case string:
		if g == "" {
			return nil
		}
		return []string{g}
	case []any:
		out := make([]string, 0, len(g))
		for _, item := range g {
			if s, ok := item.(string); ok && s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// mergeIdentity fills empty fields of base from extra. Subjects must agree.
func mergeIdentity(base, extra domainauth.Identity) domainauth.Identity {
	if base.UserID == "" {
		base.UserID = extra.UserID
	}
	if base.UserID != extra.UserID && extra.UserID != "" {
		return base
	}
	if base.Email == "" {
		base.Email = extra.Email
	}
	if base.FirstName == "" {
		base.FirstName = extra.FirstName
	}
	if base.LastName == "" {
		base.LastName = extra.LastName
	}
	if len(base.Groups) == 0 {
		base.Groups = extra.Groups
	}
	return base
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

// randomToken returns a URL-safe random string of exactly n characters.
func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
