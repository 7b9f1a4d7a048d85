package httpx

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/service"
)

const (
	sessionCookieName  = "session_id"
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "post_login_redirect"

	loginCookieMaxAge = 600 // seconds
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SessionResolver
	BeginLogin(ctx context.Context, redirectURL, loginHint string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// CallbackURL is the absolute URL of GET /auth/callback registered with the provider.
	CallbackURL string
	Logger      *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts a login and redirects to the identity provider.
// GET /auth/login?redirect_uri=<path>&login_hint=<account>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI := safeRedirectPath(q.Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), h.CallbackURL, q.Get("login_hint"))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("unable to start login"),
		})
		return
	}

	for name, value := range map[string]string{
		stateCookieName:    result.State,
		nonceCookieName:    result.Nonce,
		redirectCookieName: redirectURI,
	} {
		h.setCookie(w, r, &http.Cookie{Name: name, Value: value, MaxAge: loginCookieMaxAge})
	}

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the login, sets the session cookie and redirects to
// the path saved by Login.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	session, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_failed",
			Err:     errors.New("login could not be completed"),
		})
		return
	}

	h.setCookie(w, r, &http.Cookie{
		Name:   sessionCookieName,
		Value:  session.ID,
		MaxAge: int(time.Until(session.ExpiresAt).Seconds()),
	})
	h.clearCookie(w, r, stateCookieName)
	h.clearCookie(w, r, nonceCookieName)

	redirectURI := "/"
	if c, cookieErr := r.Cookie(redirectCookieName); cookieErr == nil {
		redirectURI = safeRedirectPath(c.Value)
		h.clearCookie(w, r, redirectCookieName)
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout removes the server-side session and clears the cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, sessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

type statusUser struct {
	ID        string          `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Role      domainauth.Role `json:"role"`
}

type statusResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *statusUser `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expiresAt,omitempty"`
}

// Status reports whether the request carries a live session.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), c.Value)
	if err != nil {
		h.clearCookie(w, r, sessionCookieName)
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	WriteJSON(w, http.StatusOK, statusResponse{
		Authenticated: true,
		User: &statusUser{
			ID:        session.UserID,
			FirstName: session.FirstName,
			LastName:  session.LastName,
			Email:     session.Email,
			Role:      session.Role,
		},
		ExpiresAt: &session.ExpiresAt,
	})
}

// setCookie fills the attributes shared by every auth cookie.
func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, c *http.Cookie) {
	c.Path = "/"
	c.Domain = h.CookieDomain
	c.HttpOnly = true
	c.Secure = isSecureRequest(r)
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}

// clearCookie mirrors the attributes used when setting so browsers drop it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	h.setCookie(w, r, &http.Cookie{Name: name, MaxAge: -1, Expires: time.Unix(0, 0).UTC()})
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
