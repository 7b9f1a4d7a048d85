package httpx

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the default name for the CSRF header (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFTokenLength is the default length of the CSRF token in bytes.
	DefaultCSRFTokenLength = 32

	csrfCookieMaxAge = 12 * 3600
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	CookieName   string
	HeaderName   string
	CookieDomain string
	TokenLength  int
}

// CSRFProtection guards cookie-authenticated mutations with the
// double-submit pattern: a random token is issued in a script-readable
// cookie and must be echoed in the X-Csrf-Token header on POST, PUT,
// PATCH and DELETE. Safe methods only receive the cookie.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := getCSRFToken(r, cfg.CookieName)
			if token == "" {
				var err error
				token, err = generateCSRFToken(cfg.TokenLength)
				if err != nil {
					WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
					return
				}
				setCSRFCookie(w, r, csrfCookieParams{Name: cfg.CookieName, Domain: cfg.CookieDomain, Token: token})
			}

			if requiresCSRFValidation(r.Method) && !validateCSRFToken(r, token, cfg.HeaderName) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "csrf_failed",
					Err:     errors.New("missing or invalid " + cfg.HeaderName + " header"),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation returns true if the HTTP method requires CSRF validation.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func getCSRFToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// generateCSRFToken fails closed: there is no fallback to a predictable token.
func generateCSRFToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

type csrfCookieParams struct {
	Name   string
	Domain string
	Token  string
}

func setCSRFCookie(w http.ResponseWriter, r *http.Request, params csrfCookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     params.Name,
		Value:    params.Token,
		Path:     "/",
		Domain:   params.Domain,
		HttpOnly: false, // read by the client to echo in the header
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   csrfCookieMaxAge,
	})
}

// isSecureRequest reports TLS directly or via X-Forwarded-Proto, which may
// carry a comma-separated list.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

func validateCSRFToken(r *http.Request, cookieToken, headerName string) bool {
	if cookieToken == "" {
		return false
	}
	headerToken := r.Header.Get(headerName)
	return headerToken != "" && subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
}
