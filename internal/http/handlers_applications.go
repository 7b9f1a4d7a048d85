package httpx

import (
	"net/http"
	"strconv"

	"github.com/target/hiring-api/internal/domain/model"
	"github.com/target/hiring-api/internal/service"
)

// ApplicationHandlers serves the job seeker's side of the lifecycle.
type ApplicationHandlers struct {
	Svc *service.ApplicationService
}

// Apply handles POST /applications with body {"jobId": "..."}.
func (h *ApplicationHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	var req model.ApplyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	app, err := h.Svc.Apply(r.Context(), ActorFromContext(r.Context()), req.JobID)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

// List handles GET /applications.
func (h *ApplicationHandlers) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.Svc.ListForApplicant(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(views))
}

// Get handles GET /applications/{id}.
func (h *ApplicationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Get(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Withdraw handles DELETE /applications/{id}.
func (h *ApplicationHandlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Withdraw(r.Context(), ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Offer handles GET /applications/{id}/offer and streams the PDF as a download.
func (h *ApplicationHandlers) Offer(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Svc.Offer(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", doc.ContentType)
	hdr.Set("Content-Disposition", attachmentDisposition(doc.Filename))
	hdr.Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	hdr.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Bytes); err != nil {
		// Client went away mid-download.
		return
	}
}

// EmployerHandlers serves the employer's side of the lifecycle.
type EmployerHandlers struct {
	Svc *service.ApplicationService
}

// List handles GET /employer/applications?status=.
func (h *EmployerHandlers) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.Svc.ListForEmployer(r.Context(), ActorFromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(views))
}

// Decide handles PUT /employer/applications/{id} with body {"status": "ACCEPTED"|"REJECTED"}.
func (h *EmployerHandlers) Decide(w http.ResponseWriter, r *http.Request) {
	var req model.DecideRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	app, err := h.Svc.Decide(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}
