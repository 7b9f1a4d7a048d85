// Package httpx exposes the hiring API over HTTP: JSON handlers, session
// middleware and routing.
package httpx

import (
	"net/http"
	"strings"

	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
	"github.com/target/hiring-api/internal/service"
)

// JobHandlers provides HTTP handlers for the job catalog.
type JobHandlers struct {
	Svc *service.JobService
}

// Create handles POST /jobs.
func (h *JobHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), ActorFromContext(r.Context()), &req)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// Search handles GET /jobs?title=&location=&employmentType=&limit=&offset=.
func (h *JobHandlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := model.JobSearch{
		Title:    strings.TrimSpace(q.Get("title")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	if v := strings.TrimSpace(q.Get("employmentType")); v != "" {
		et, ok := model.ParseEmploymentType(v)
		if !ok {
			WriteAppError(w, r, apperrors.ValidationField("employmentType", "unknown employment type "+v))
			return
		}
		search.EmploymentType = &et
	}
	search.Limit, search.Offset = ParseLimitOffset(r, defaultPageLimit, maxPageLimit)

	jobs, err := h.Svc.Search(r.Context(), search)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(jobs))
}

// Get handles GET /jobs/{id}.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Update handles PUT /jobs/{id}.
func (h *JobHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Update(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), &req)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /jobs/{id}.
func (h *JobHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
