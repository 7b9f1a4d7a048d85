//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/target/hiring-api/internal/errors"
)

const (
	maxJobTitleLen       = 200
	maxJobLocationLen    = 200
	maxJobDescriptionLen = 20000
)

// EmploymentType enumerates the contract forms a job can be offered under.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "Full-time"
	EmploymentPartTime   EmploymentType = "Part-time"
	EmploymentContract   EmploymentType = "Contract"
	EmploymentInternship EmploymentType = "Internship"
)

// EmploymentTypes returns all supported employment types in display order.
func EmploymentTypes() []EmploymentType {
	return []EmploymentType{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship}
}

// Valid reports whether the employment type is supported.
func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship:
		return true
	default:
		return false
	}
}

// ParseEmploymentType matches v case-insensitively against the supported types.
func ParseEmploymentType(v string) (EmploymentType, bool) {
	v = strings.TrimSpace(v)
	for _, et := range EmploymentTypes() {
		if strings.EqualFold(v, string(et)) {
			return et, true
		}
	}
	return "", false
}

// Job is a posting owned by an employer. EmployerID never changes after creation.
type Job struct {
	ID             string         `json:"id"             db:"id"`
	Title          string         `json:"title"          db:"title"`
	Description    string         `json:"description"    db:"description"`
	Location       string         `json:"location"       db:"location"`
	EmploymentType EmploymentType `json:"employmentType" db:"employment_type"`
	EmployerID     string         `json:"employerId"     db:"employer_id"`
	CreatedAt      time.Time      `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt"      db:"updated_at"`
}

// Summary projects the fields shown alongside applications.
func (j *Job) Summary() *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{
		ID:             j.ID,
		Title:          j.Title,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		EmployerID:     j.EmployerID,
	}
}

// JobSummary is the job projection embedded in application views.
type JobSummary struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Location       string         `json:"location"`
	EmploymentType EmploymentType `json:"employmentType"`
	EmployerID     string         `json:"employerId"`
}

// CreateJobRequest represents parameters to create a Job.
type CreateJobRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Location       string         `json:"location"`
	EmploymentType EmploymentType `json:"employmentType"`
}

// Validate trims and validates CreateJobRequest.
func (r *CreateJobRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	if err := validateText("title", r.Title, maxJobTitleLen); err != nil {
		return err
	}
	if err := validateText("description", r.Description, maxJobDescriptionLen); err != nil {
		return err
	}
	if err := validateText("location", r.Location, maxJobLocationLen); err != nil {
		return err
	}
	et, ok := ParseEmploymentType(string(r.EmploymentType))
	if !ok {
		return apperrors.ValidationField("employmentType", employmentTypeMessage())
	}
	r.EmploymentType = et
	return nil
}

// UpdateJobRequest carries the mutable content fields of a Job.
type UpdateJobRequest struct {
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Location       *string         `json:"location,omitempty"`
	EmploymentType *EmploymentType `json:"employmentType,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateJobRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Location != nil || r.EmploymentType != nil
}

// Validate ensures at least one field is set and normalizes the provided values.
func (r *UpdateJobRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be updated")
	}
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
		if err := validateText("title", *r.Title, maxJobTitleLen); err != nil {
			return err
		}
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
		if err := validateText("description", *r.Description, maxJobDescriptionLen); err != nil {
			return err
		}
	}
	if r.Location != nil {
		*r.Location = strings.TrimSpace(*r.Location)
		if err := validateText("location", *r.Location, maxJobLocationLen); err != nil {
			return err
		}
	}
	if r.EmploymentType != nil {
		et, ok := ParseEmploymentType(string(*r.EmploymentType))
		if !ok {
			return apperrors.ValidationField("employmentType", employmentTypeMessage())
		}
		*r.EmploymentType = et
	}
	return nil
}

// Apply copies the set fields onto job.
func (r *UpdateJobRequest) Apply(job *Job) {
	if r.Title != nil {
		job.Title = *r.Title
	}
	if r.Description != nil {
		job.Description = *r.Description
	}
	if r.Location != nil {
		job.Location = *r.Location
	}
	if r.EmploymentType != nil {
		job.EmploymentType = *r.EmploymentType
	}
}

// JobSearch filters the public job catalog. Title and Location match as
// case-insensitive substrings; EmploymentType matches exactly.
type JobSearch struct {
	Title          string
	Location       string
	EmploymentType *EmploymentType
	EmployerID     string
	Limit          int
	Offset         int
}

func validateText(field, v string, maxLen int) error {
	if v == "" {
		return apperrors.ValidationField(field, field+" is required and cannot be empty")
	}
	if utf8.RuneCountInString(v) > maxLen {
		return apperrors.ValidationField(field, field+" is too long")
	}
	return nil
}

func employmentTypeMessage() string {
	names := make([]string, 0, len(EmploymentTypes()))
	for _, et := range EmploymentTypes() {
		names = append(names, string(et))
	}
	return "employmentType must be one of: " + strings.Join(names, ", ")
}
