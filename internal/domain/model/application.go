//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	apperrors "github.com/target/hiring-api/internal/errors"
)

// ApplicationStatus is the lifecycle state of an application.
// Withdrawal deletes the record, so there is no withdrawn status.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further status change is allowed from s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// CanTransitionTo reports whether s → next is an edge of the lifecycle.
// Only PENDING → ACCEPTED and PENDING → REJECTED exist.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return s == ApplicationPending && next.Terminal()
}

// ParseApplicationStatus matches v exactly against the known statuses.
func ParseApplicationStatus(v string) (ApplicationStatus, bool) {
	s := ApplicationStatus(v)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// ParseDecision parses the status an employer may set: ACCEPTED or REJECTED.
func ParseDecision(v string) (ApplicationStatus, error) {
	s, ok := ParseApplicationStatus(v)
	if !ok || !s.Terminal() {
		return "", apperrors.ValidationField("status", "status must be one of: ACCEPTED, REJECTED")
	}
	return s, nil
}

// Application links one applicant to one job. JobID and ApplicantID are immutable.
type Application struct {
	ID          string            `json:"id"          db:"id"`
	JobID       string            `json:"jobId"       db:"job_id"`
	ApplicantID string            `json:"applicantId" db:"applicant_id"`
	Status      ApplicationStatus `json:"status"      db:"status"`
	CreatedAt   time.Time         `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt"   db:"updated_at"`
}

// ApplicationView is an application with its job and applicant resolved for display.
type ApplicationView struct {
	Application
	Job       *JobSummary  `json:"job,omitempty"`
	Applicant *UserSummary `json:"applicant,omitempty"`
}

// ApplyRequest is the body of POST /applications.
type ApplyRequest struct {
	JobID string `json:"jobId"`
}

// Validate trims JobID and requires it.
func (r *ApplyRequest) Validate() error {
	r.JobID = strings.TrimSpace(r.JobID)
	if r.JobID == "" {
		return apperrors.ValidationField("jobId", "jobId is required")
	}
	return nil
}

// DecideRequest is the body of PUT /employer/applications/{id}.
type DecideRequest struct {
	Status string `json:"status"`
}

// ApplicationListOptions scopes application listings. Empty strings mean no filter.
type ApplicationListOptions struct {
	ApplicantID string
	EmployerID  string
	Status      *ApplicationStatus
	Limit       int
	Offset      int
}
