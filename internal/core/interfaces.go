package core

import (
	"context"
	"time"

	"github.com/target/hiring-api/internal/domain/model"
	"github.com/target/hiring-api/internal/offer"
)

// This file contains repository and collaborator interfaces (ports in hexagonal architecture).
// Services depend on these; internal/data and internal/adapters provide implementations.
// Implementations report absent rows as apperrors NotFound and unique violations as Conflict.

// JobRepository stores job postings.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) (*model.Job, error)
	// Delete removes the job and, through cascade, its applications.
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, q model.JobSearch) ([]*model.Job, error)
}

// UserRepository is the user directory.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, opts model.UserListOptions) ([]*model.User, error)
}

// TransitionParams groups parameters for ApplicationRepository.TransitionStatus.
type TransitionParams struct {
	ID        string
	To        model.ApplicationStatus
	UpdatedAt time.Time
}

// ApplicationRepository stores applications.
//
// Create must enforce uniqueness of (JobID, ApplicantID) atomically and
// report a duplicate as Conflict. TransitionStatus and DeleteIfPending are
// compare-and-set operations on status PENDING: when the swap does not
// happen they return the current record with swapped=false, and NotFound
// when no record exists.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) (*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	TransitionStatus(ctx context.Context, p TransitionParams) (app *model.Application, swapped bool, err error)
	DeleteIfPending(ctx context.Context, id string) (app *model.Application, deleted bool, err error)
	List(ctx context.Context, opts model.ApplicationListOptions) ([]*model.ApplicationView, error)
}

// RateLimit describes a fixed-window budget.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Enabled reports whether the limit should be enforced.
func (r RateLimit) Enabled() bool { return r.Limit > 0 && r.Window > 0 }

// RateLimiter counts hits per key within a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit RateLimit) (bool, error)
}

// OfferGenerator renders offer documents for accepted applications.
type OfferGenerator interface {
	Generate(in offer.Input) (*offer.Document, error)
}
