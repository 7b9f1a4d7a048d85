package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
)

// SessionResolver looks up the session behind a session cookie.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			info := &requestInfo{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			}
			if info.actorID != "" {
				attrs = append(attrs, slog.String("actor_id", info.actorID))
			}
			logger.InfoContext(r.Context(), "http", attrs...)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

// requestInfo lets RequireAuth report the resolved actor back to Logging.
type requestInfo struct {
	actorID string
}

type requestInfoKey struct{}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: "internal",
						Err:     errors.New(http.StatusText(http.StatusInternalServerError)),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that requires a live session cookie.
// The session is placed in the request context; role and ownership checks
// are left to the services.
func RequireAuth(auth SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := getSessionFromRequest(r, auth)
			if session == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "unauthenticated",
					Err:     errors.New("authentication required"),
				})
				return
			}

			if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
				info.actorID = session.UserID
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// getSessionFromRequest retrieves and validates a session from the request.
func getSessionFromRequest(r *http.Request, auth SessionResolver) *domainauth.Session {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	session, err := auth.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		return nil
	}

	return session
}
