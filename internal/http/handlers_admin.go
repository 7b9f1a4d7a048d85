package httpx

import (
	"net/http"

	"github.com/target/hiring-api/internal/service"
)

// AdminHandlers serves the admin listings.
type AdminHandlers struct {
	Svc *service.AdminService
}

// ListUsers handles GET /admin/users?role=&limit=&offset=.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	users, err := h.Svc.ListUsers(r.Context(), ActorFromContext(r.Context()), r.URL.Query().Get("role"), limit, offset)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(users))
}

// ListJobs handles GET /admin/jobs.
func (h *AdminHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	jobs, err := h.Svc.ListJobs(r.Context(), ActorFromContext(r.Context()), limit, offset)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(jobs))
}

// DeleteJob handles DELETE /admin/jobs/{id}.
func (h *AdminHandlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteJob(r.Context(), ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListApplications handles GET /admin/applications.
func (h *AdminHandlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	apps, err := h.Svc.ListApplications(r.Context(), ActorFromContext(r.Context()), limit, offset)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(apps))
}
