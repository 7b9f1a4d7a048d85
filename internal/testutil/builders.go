// Package testutil provides database, Redis and fixture helpers for tests.
package testutil

import (
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/model"
)

// UserBuilder builds model.User fixtures.
type UserBuilder struct {
	u model.User
}

// NewUser starts a user fixture with the given ID and role.
func NewUser(id string, role domainauth.Role) *UserBuilder {
	return &UserBuilder{u: model.User{
		ID:        id,
		FirstName: "Test",
		LastName:  "User",
		Email:     id + "@example.com",
		Role:      role,
		CreatedAt: TestTime(),
		UpdatedAt: TestTime(),
	}}
}

// Employer is shorthand for NewUser(id, RoleEmployer).
func Employer(id string) *UserBuilder { return NewUser(id, domainauth.RoleEmployer) }

// JobSeeker is shorthand for NewUser(id, RoleJobSeeker).
func JobSeeker(id string) *UserBuilder { return NewUser(id, domainauth.RoleJobSeeker) }

// WithName sets first and last name.
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.u.FirstName, b.u.LastName = first, last
	return b
}

// Build returns a copy of the fixture.
func (b *UserBuilder) Build() *model.User {
	u := b.u
	return &u
}

// JobBuilder builds model.Job fixtures.
type JobBuilder struct {
	j model.Job
}

// NewJob starts a full-time job fixture owned by employerID.
func NewJob(id, employerID string) *JobBuilder {
	return &JobBuilder{j: model.Job{
		ID:             id,
		Title:          "Backend Engineer",
		Description:    "Build and run services.",
		Location:       "Minneapolis",
		EmploymentType: model.EmploymentFullTime,
		EmployerID:     employerID,
		CreatedAt:      TestTime(),
		UpdatedAt:      TestTime(),
	}}
}

// WithTitle sets the title.
func (b *JobBuilder) WithTitle(title string) *JobBuilder {
	b.j.Title = title
	return b
}

// WithLocation sets the location.
func (b *JobBuilder) WithLocation(loc string) *JobBuilder {
	b.j.Location = loc
	return b
}

// WithEmploymentType sets the employment type.
func (b *JobBuilder) WithEmploymentType(et model.EmploymentType) *JobBuilder {
	b.j.EmploymentType = et
	return b
}

// CreatedAt sets both timestamps.
func (b *JobBuilder) CreatedAt(t time.Time) *JobBuilder {
	b.j.CreatedAt, b.j.UpdatedAt = t, t
	return b
}

// Build returns a copy of the fixture.
func (b *JobBuilder) Build() *model.Job {
	j := b.j
	return &j
}

// ApplicationBuilder builds model.Application fixtures.
type ApplicationBuilder struct {
	a model.Application
}

// NewApplication starts a PENDING application fixture.
func NewApplication(id, jobID, applicantID string) *ApplicationBuilder {
	return &ApplicationBuilder{a: model.Application{
		ID:          id,
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      model.ApplicationPending,
		CreatedAt:   TestTime(),
		UpdatedAt:   TestTime(),
	}}
}

// WithStatus sets the status.
func (b *ApplicationBuilder) WithStatus(s model.ApplicationStatus) *ApplicationBuilder {
	b.a.Status = s
	return b
}

// CreatedAt sets both timestamps.
func (b *ApplicationBuilder) CreatedAt(t time.Time) *ApplicationBuilder {
	b.a.CreatedAt, b.a.UpdatedAt = t, t
	return b
}

// Build returns a copy of the fixture.
func (b *ApplicationBuilder) Build() *model.Application {
	a := b.a
	return &a
}
