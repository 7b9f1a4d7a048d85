package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/hiring-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Applications *service.ApplicationService // Required
	Jobs         *service.JobService         // Required
	Admin        *service.AdminService       // Required
	Auth         *service.AuthService        // Required
	CookieDomain string
	// CallbackURL is the absolute login callback URL registered with the provider.
	CallbackURL string
	// CSRF enables double-submit protection on authenticated mutations.
	CSRF bool
	// Readiness checks served at /readyz, keyed by dependency name.
	Readiness map[string]ReadinessCheck
	Logger    *slog.Logger
}

// NewRouter creates and configures the API router.
func NewRouter(services RouterServices) http.Handler {
	if services.Applications == nil || services.Jobs == nil || services.Admin == nil || services.Auth == nil {
		panic("NewRouter: applications, jobs, admin and auth services are required") //nolint:forbidigo // Fail fast during server setup.
	}
	mux := http.NewServeMux()

	authed := routeGroup{mw: []func(http.Handler) http.Handler{RequireAuth(services.Auth)}}
	if services.CSRF {
		authed.mw = append(authed.mw, CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain}))
	}

	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs}, authed)
	registerApplicationRoutes(mux, &ApplicationHandlers{Svc: services.Applications}, authed)
	registerEmployerRoutes(mux, &EmployerHandlers{Svc: services.Applications}, authed)
	registerAdminRoutes(mux, &AdminHandlers{Svc: services.Admin}, authed)
	registerAuthRoutes(mux, &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		CallbackURL:  services.CallbackURL,
		Logger:       services.Logger,
	})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Readiness))
	mux.HandleFunc("/", notFound)

	return mux
}

// routeGroup applies a shared middleware chain; the first entry runs outermost.
type routeGroup struct {
	mw []func(http.Handler) http.Handler
}

func (g routeGroup) wrap(h http.HandlerFunc) http.Handler {
	var out http.Handler = h
	for i := len(g.mw) - 1; i >= 0; i-- {
		out = g.mw[i](out)
	}
	return out
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers, authed routeGroup) {
	mux.HandleFunc("GET /jobs", h.Search)
	mux.HandleFunc("GET /jobs/{id}", h.Get)
	mux.Handle("POST /jobs", authed.wrap(h.Create))
	mux.Handle("PUT /jobs/{id}", authed.wrap(h.Update))
	mux.Handle("DELETE /jobs/{id}", authed.wrap(h.Delete))
}

func registerApplicationRoutes(mux *http.ServeMux, h *ApplicationHandlers, authed routeGroup) {
	mux.Handle("POST /applications", authed.wrap(h.Apply))
	mux.Handle("GET /applications", authed.wrap(h.List))
	mux.Handle("GET /applications/{id}", authed.wrap(h.Get))
	mux.Handle("DELETE /applications/{id}", authed.wrap(h.Withdraw))
	mux.Handle("GET /applications/{id}/offer", authed.wrap(h.Offer))
}

func registerEmployerRoutes(mux *http.ServeMux, h *EmployerHandlers, authed routeGroup) {
	mux.Handle("GET /employer/applications", authed.wrap(h.List))
	mux.Handle("PUT /employer/applications/{id}", authed.wrap(h.Decide))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers, authed routeGroup) {
	mux.Handle("GET /admin/users", authed.wrap(h.ListUsers))
	mux.Handle("GET /admin/jobs", authed.wrap(h.ListJobs))
	mux.Handle("DELETE /admin/jobs/{id}", authed.wrap(h.DeleteJob))
	mux.Handle("GET /admin/applications", authed.wrap(h.ListApplications))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "not_found",
		Err:     errors.New("no route for " + r.Method + " " + r.URL.Path),
	})
}
