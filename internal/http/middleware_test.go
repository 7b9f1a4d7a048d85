package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/ports"
)

type stubSessions map[string]*domainauth.Session

func (s stubSessions) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if sess, ok := s[id]; ok {
		return sess, nil
	}
	return nil, ports.ErrSessionNotFound
}

func TestRequireAuth(t *testing.T) {
	sessions := stubSessions{"good": {ID: "good", UserID: "seeker-1", Role: domainauth.RoleJobSeeker, ExpiresAt: time.Now().Add(time.Hour)}}
	var seen *domainauth.Session
	h := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserSessionFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		body := requireError(t, w, http.StatusUnauthorized, "unauthenticated")
		assert.Equal(t, "authentication required", body.Message)
	})

	t.Run("live session", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "good"})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusTeapot, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "seeker-1", seen.UserID)
		assert.Equal(t, "seeker-1", ActorFromContext(SetSessionInContext(context.Background(), seen)).ID)
	})
}

func TestActorFromContext_Anonymous(t *testing.T) {
	actor := ActorFromContext(context.Background())
	assert.Empty(t, actor.ID)
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications", nil))

	body := requireError(t, w, http.StatusInternalServerError, "internal")
	assert.NotContains(t, body.Message, "kaboom")
	assert.Contains(t, logs.String(), "kaboom")
	assert.Contains(t, logs.String(), `"path":"/applications"`)
}

func TestLogging_RecordsActor(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	sessions := stubSessions{"s1": {ID: "s1", UserID: "emp-1", Role: domainauth.RoleEmployer}}
	inner := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	h := Logging(logger)(Compression(CompressionConfig{})(inner))

	r := httptest.NewRequest(http.MethodPut, "/employer/applications/a1", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "s1"})
	r.Header.Set("Accept-Encoding", "gzip")
	h.ServeHTTP(httptest.NewRecorder(), r)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "http", entry["msg"])
	assert.Equal(t, "PUT", entry["method"])
	assert.Equal(t, "/employer/applications/a1", entry["path"])
	assert.EqualValues(t, http.StatusAccepted, entry["status"])
	assert.Equal(t, "emp-1", entry["actor_id"])
}

func TestLogging_Anonymous(t *testing.T) {
	var logs bytes.Buffer
	h := Logging(slog.New(slog.NewJSONHandler(&logs, nil)))(http.HandlerFunc(healthHandler))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.NotContains(t, entry, "actor_id")
}

func gunzip(t *testing.T, b []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(b))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

func TestCompression(t *testing.T) {
	payload := map[string]string{"title": strings.Repeat("Backend Engineer ", 100)}
	jsonHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, payload)
	})

	t.Run("gzips json when accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		r.Header.Set("Accept-Encoding", "br, gzip;q=0.8")
		Compression(CompressionConfig{})(jsonHandler).ServeHTTP(w, r)

		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Contains(t, w.Header().Values("Vary"), "Accept-Encoding")
		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(gunzip(t, w.Body.Bytes())), &got))
		assert.Equal(t, payload, got)
	})

	t.Run("identity without accept-encoding", func(t *testing.T) {
		w := httptest.NewRecorder()
		Compression(CompressionConfig{})(jsonHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Contains(t, w.Body.String(), "Backend Engineer")
	})

	t.Run("gzip refused by q=0", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		r.Header.Set("Accept-Encoding", "gzip;q=0")
		Compression(CompressionConfig{})(jsonHandler).ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
	})

	t.Run("pdf passes through", func(t *testing.T) {
		pdf := []byte("%PDF-1.3 offer")
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(pdf)
		})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/applications/a1/offer", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		Compression(CompressionConfig{})(h).ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, pdf, w.Body.Bytes())
	})

	t.Run("small body under min size is sent as-is", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
		})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		Compression(CompressionConfig{MinSize: 1024})(h).ServeHTTP(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("large body over min size is compressed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		Compression(CompressionConfig{MinSize: 256, Level: gzip.BestSpeed})(jsonHandler).ServeHTTP(w, r)

		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Contains(t, gunzip(t, w.Body.Bytes()), "Backend Engineer")
	})

	t.Run("no content", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/applications/a1", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		Compression(CompressionConfig{})(h).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestAcceptsGzip(t *testing.T) {
	for header, want := range map[string]bool{
		"":                    false,
		"gzip":                true,
		"GZIP":                true,
		"br, gzip;q=0.5":      true,
		"gzip;q=0":            false,
		"gzip; q=0.000":       false,
		"deflate, x-gzip":     false,
		"identity;q=1, gzip ": true,
	} {
		assert.Equal(t, want, acceptsGzip(header), "header %q", header)
	}
}

func TestReadyHandler(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		w := httptest.NewRecorder()
		readyHandler(map[string]ReadinessCheck{
			"db": func(context.Context) error { return nil },
		}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("failing dependency", func(t *testing.T) {
		w := httptest.NewRecorder()
		readyHandler(map[string]ReadinessCheck{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return io.ErrUnexpectedEOF },
		}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "redis")
	})
}
