package config

import (
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public URL of the API (e.g., "https://jobs.example.com").
	// Used for the login callback and as the default offer letter link base.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Derived from BaseURL's registrable domain when empty.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CORSAllowedOrigins lists browser origins allowed to call the API with credentials.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// CSRFEnabled turns on double-submit tokens for authenticated mutations.
	CSRFEnabled bool `env:"HTTP_CSRF_ENABLED" envDefault:"false"`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}

	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	if h.CookieDomain == "" {
		h.CookieDomain = DeriveCookieDomain(h.BaseURL)
	}

	origins := h.CORSAllowedOrigins[:0]
	for _, o := range h.CORSAllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	h.CORSAllowedOrigins = origins

	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// CallbackURL is the absolute login callback URL.
func (h *HTTPConfig) CallbackURL() string {
	return h.BaseURL + "/auth/callback"
}

// DeriveCookieDomain returns the registrable domain (eTLD+1) of baseURL so the
// session cookie is shared between the API host and its sibling front end.
// Hosts without one (localhost, IPs, bare public suffixes) yield "", which
// scopes cookies to the request host.
func DeriveCookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}
