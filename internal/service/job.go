package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	"github.com/target/hiring-api/internal/domain/authz"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo   core.JobRepository // Required
	Clock  data.TimeProvider  // Optional: defaults to RealTimeProvider
	Logger *slog.Logger       // Optional
}

// JobService is the job catalog: employers manage their postings and
// anyone may search and read them.
type JobService struct {
	repo   core.JobRepository
	guard  authz.Guard
	clock  data.TimeProvider
	logger *slog.Logger
}

// NewJobService constructs a JobService. It panics when Repo is nil.
func NewJobService(opts JobServiceOptions) *JobService {
	if opts.Repo == nil {
		panic("JobRepository is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{repo: opts.Repo, guard: authz.New(), clock: clock, logger: logger.With("component", "jobs")}
}

// Create posts a job owned by actor.
func (s *JobService) Create(ctx context.Context, actor authz.Actor, req *model.CreateJobRequest) (*model.Job, error) {
	if err := s.guard.CheckRole(actor, authz.ActionCreateJob); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	job, err := s.repo.Create(ctx, &model.Job{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		EmployerID:     actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "actor_id", actor.ID)
	return job, nil
}

// GetByID returns a job. Reads are public.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Search filters the catalog by title, location and employment type.
func (s *JobService) Search(ctx context.Context, q model.JobSearch) ([]*model.Job, error) {
	jobs, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return jobs, nil
}

// Update changes content fields of actor's own job. Ownership never changes.
func (s *JobService) Update(
	ctx context.Context,
	actor authz.Actor,
	id string,
	req *model.UpdateJobRequest,
) (*model.Job, error) {
	if err := s.guard.CheckRole(actor, authz.ActionUpdateJob); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.loadOwned(ctx, actor, authz.ActionUpdateJob, id)
	if err != nil {
		return nil, err
	}

	req.Apply(job)
	job.UpdatedAt = s.clock.Now()
	updated, err := s.repo.Update(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	s.logger.InfoContext(ctx, "job updated", "job_id", id, "actor_id", actor.ID)
	return updated, nil
}

// Delete removes actor's own job together with its applications.
func (s *JobService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := s.guard.CheckRole(actor, authz.ActionDeleteJob); err != nil {
		return err
	}
	if _, err := s.loadOwned(ctx, actor, authz.ActionDeleteJob, id); err != nil {
		return err
	}
	return s.delete(ctx, actor, id)
}

func (s *JobService) delete(ctx context.Context, actor authz.Actor, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("job not found")
	}
	s.logger.InfoContext(ctx, "job deleted", "job_id", id, "actor_id", actor.ID)
	return nil
}

func (s *JobService) loadOwned(ctx context.Context, actor authz.Actor, action authz.Action, id string) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if err := s.guard.Authorize(actor, action, authz.JobResource(job.ID, job.EmployerID)); err != nil {
		return nil, err
	}
	return job, nil
}
