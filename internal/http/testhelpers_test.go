package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/target/hiring-api/internal/adapters/memory"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	mocks "github.com/target/hiring-api/internal/mocks/auth"
	"github.com/target/hiring-api/internal/offer"
	"github.com/target/hiring-api/internal/service"
	"github.com/target/hiring-api/internal/testutil"
)

// testServer is the full router over an in-memory store. Sessions named
// after their user ID are pre-seeded for every fixture user.
type testServer struct {
	t        *testing.T
	handler  http.Handler
	store    *memory.Store
	sessions *mocks.MemorySessionStore
	provider *mocks.MockAuthProvider
}

type serverOption func(*RouterServices)

func withCSRF() serverOption { return func(s *RouterServices) { s.CSRF = true } }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clock := data.NewFixedTimeProvider(testutil.TestTime())
	sessions := mocks.NewMemorySessionStore()

	users := []*testutil.UserBuilder{
		testutil.Employer("emp-1").WithName("Acme", "Corp"),
		testutil.Employer("emp-2").WithName("Globex", "Inc"),
		testutil.JobSeeker("seeker-1").WithName("Ada", "Lovelace"),
		testutil.JobSeeker("seeker-2").WithName("Alan", "Turing"),
		testutil.NewUser("admin-1", domainauth.RoleAdmin),
		testutil.NewUser("guest-1", domainauth.RoleGuest),
	}
	for _, b := range users {
		u, err := store.Users().Upsert(ctx, b.Build())
		require.NoError(t, err)
		require.NoError(t, sessions.Save(ctx, domainauth.Session{
			ID:        "sess-" + u.ID,
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      u.Role,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}
	_, err := store.Jobs().Create(ctx, testutil.NewJob("job-1", "emp-1").Build())
	require.NoError(t, err)

	provider := mocks.NewMockAuthProvider()
	userSvc := service.NewUserService(service.UserServiceOptions{Repo: store.Users(), Clock: clock})
	jobSvc := service.NewJobService(service.JobServiceOptions{Repo: store.Jobs(), Clock: clock})
	rs := RouterServices{
		Applications: service.NewApplicationService(service.ApplicationServiceOptions{
			Stores: service.ApplicationStores{
				Applications: store.Applications(),
				Jobs:         store.Jobs(),
				Users:        store.Users(),
			},
			Offers: offer.NewGenerator(offer.Options{JobBaseURL: "https://jobs.example.com", Now: clock.Now}),
			Clock:  clock,
		}),
		Jobs: jobSvc,
		Admin: service.NewAdminService(service.AdminServiceOptions{
			Users: userSvc, Jobs: jobSvc, Applications: store.Applications(),
		}),
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider: provider,
			Sessions: sessions,
			Roles:    mocks.GroupRoleMapper{Roles: map[string]domainauth.Role{"job-seekers": domainauth.RoleJobSeeker}},
			Users:    userSvc,
		}),
		CallbackURL: "http://localhost:8080/auth/callback",
	}
	for _, o := range opts {
		o(&rs)
	}

	return &testServer{t: t, handler: NewRouter(rs), store: store, sessions: sessions, provider: provider}
}

type request struct {
	method  string
	path    string
	as      string // user ID whose pre-seeded session is sent
	body    any
	rawBody string
	header  http.Header
	cookies []*http.Cookie
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	switch {
	case req.rawBody != "":
		body = bytes.NewBufferString(req.rawBody)
	case req.body != nil:
		b, err := json.Marshal(req.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if req.as != "" {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-" + req.as})
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

// decode unmarshals a JSON response body into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorResponse {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorResponse](t, w)
	require.Equal(t, code, body.Error)
	return body
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
