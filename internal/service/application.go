package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	"github.com/target/hiring-api/internal/domain/authz"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
	"github.com/target/hiring-api/internal/observability/metrics"
	"github.com/target/hiring-api/internal/observability/statsd"
	"github.com/target/hiring-api/internal/offer"
)

// ApplicationStores groups the repositories the lifecycle reads and writes.
type ApplicationStores struct {
	Applications core.ApplicationRepository // Required
	Jobs         core.JobRepository         // Required: job catalog lookups
	Users        core.UserRepository        // Required: applicant and employer lookups
}

// ApplyPolicy throttles how often one applicant may apply.
type ApplyPolicy struct {
	Limiter core.RateLimiter // Optional: no throttling when nil
	Limit   core.RateLimit
}

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	Stores  ApplicationStores
	Apply   ApplyPolicy
	Offers  core.OfferGenerator // Required for Offer
	Clock   data.TimeProvider   // Optional: defaults to RealTimeProvider
	Logger  *slog.Logger        // Optional
	Metrics statsd.Sink         // Optional: lifecycle counters and timings
}

// ApplicationService runs the application lifecycle.
//
// Every operation takes the acting identity explicitly. Role checks run
// before any lookup; ownership checks run after the resource is loaded, so
// an absent application is NotFound for everyone and an existing one owned
// by someone else is Forbidden.
//
// Status changes and withdrawals are compare-and-set on PENDING in the
// repository, so a racing decide and withdraw cannot both succeed.
type ApplicationService struct {
	apps    core.ApplicationRepository
	jobs    core.JobRepository
	users   core.UserRepository
	offers  core.OfferGenerator
	limiter core.RateLimiter
	limit   core.RateLimit
	guard   authz.Guard
	clock   data.TimeProvider
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewApplicationService constructs an ApplicationService. It panics when a
// required repository is missing.
func NewApplicationService(opts ApplicationServiceOptions) *ApplicationService {
	if opts.Stores.Applications == nil || opts.Stores.Jobs == nil || opts.Stores.Users == nil {
		panic("application, job and user repositories are required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{
		apps:    opts.Stores.Applications,
		jobs:    opts.Stores.Jobs,
		users:   opts.Stores.Users,
		offers:  opts.Offers,
		limiter: opts.Apply.Limiter,
		limit:   opts.Apply.Limit,
		guard:   authz.New(),
		clock:   clock,
		logger:  logger.With("component", "applications"),
		metrics: opts.Metrics,
	}
}

// Apply creates a PENDING application of actor for jobID.
func (s *ApplicationService) Apply(ctx context.Context, actor authz.Actor, jobID string) (_ *model.Application, err error) {
	defer s.observe(metrics.ActionApply, string(model.ApplicationPending), time.Now(), &err)
	if err := s.guard.CheckRole(actor, authz.ActionApply); err != nil {
		return nil, err
	}
	req := model.ApplyRequest{JobID: jobID}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.jobs.GetByID(ctx, req.JobID); err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if err := s.throttle(ctx, actor.ID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	app, err := s.apps.Create(ctx, &model.Application{
		ID:          uuid.NewString(),
		JobID:       req.JobID,
		ApplicantID: actor.ID,
		Status:      model.ApplicationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID, "job_id", app.JobID, "actor_id", actor.ID)
	return app, nil
}

// throttle fails open: a limiter outage is logged and the apply proceeds.
func (s *ApplicationService) throttle(ctx context.Context, actorID string) error {
	if s.limiter == nil || !s.limit.Enabled() {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, "apply:"+actorID, s.limit)
	if err != nil {
		s.logger.WarnContext(ctx, "apply rate limiter unavailable", "actor_id", actorID, "error", err)
		return nil
	}
	if !ok {
		return apperrors.RateLimited("too many applications, try again later")
	}
	return nil
}

// Decide moves a PENDING application of one of actor's jobs to ACCEPTED or REJECTED.
func (s *ApplicationService) Decide(
	ctx context.Context,
	actor authz.Actor,
	applicationID, status string,
) (_ *model.Application, err error) {
	var next model.ApplicationStatus
	defer func(start time.Time) { s.observe(metrics.ActionDecide, string(next), start, &err) }(time.Now())

	if err := s.guard.CheckRole(actor, authz.ActionDecideApplication); err != nil {
		return nil, err
	}
	next, err = model.ParseDecision(status)
	if err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// The job was deleted and its applications went with it.
			return nil, apperrors.NotFound("application not found")
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	if err := s.guard.Authorize(actor, authz.ActionDecideApplication, authz.JobResource(job.ID, job.EmployerID)); err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(next) {
		return nil, decidedError(app.Status)
	}

	updated, swapped, err := s.apps.TransitionStatus(ctx, core.TransitionParams{
		ID:        app.ID,
		To:        next,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	if !swapped {
		// Decided or withdrawn between the load and the update.
		return nil, decidedError(updated.Status)
	}

	s.logger.InfoContext(ctx, "application decided",
		"application_id", updated.ID, "job_id", updated.JobID, "actor_id", actor.ID, "status", updated.Status)
	return updated, nil
}

func decidedError(current model.ApplicationStatus) error {
	return apperrors.InvalidTransition("cannot change status of " + strings.ToLower(string(current)) + " application")
}

// Withdraw deletes actor's own PENDING application.
func (s *ApplicationService) Withdraw(ctx context.Context, actor authz.Actor, applicationID string) (err error) {
	defer s.observe(metrics.ActionWithdraw, "", time.Now(), &err)
	if err := s.guard.CheckRole(actor, authz.ActionWithdrawApplication); err != nil {
		return err
	}
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if err := s.guard.Authorize(actor, authz.ActionWithdrawApplication,
		authz.ApplicationResource(app.ID, app.ApplicantID)); err != nil {
		return err
	}

	_, deleted, err := s.apps.DeleteIfPending(ctx, app.ID)
	if err != nil {
		return fmt.Errorf("withdraw application: %w", err)
	}
	if !deleted {
		return apperrors.InvalidTransition("cannot withdraw processed application")
	}

	s.logger.InfoContext(ctx, "application withdrawn",
		"application_id", app.ID, "job_id", app.JobID, "actor_id", actor.ID)
	return nil
}

// ListForApplicant returns actor's applications with job summaries, newest first.
func (s *ApplicationService) ListForApplicant(ctx context.Context, actor authz.Actor) ([]*model.ApplicationView, error) {
	if err := s.guard.CheckRole(actor, authz.ActionListOwnApplications); err != nil {
		return nil, err
	}
	views, err := s.apps.List(ctx, model.ApplicationListOptions{ApplicantID: actor.ID})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	for _, v := range views {
		v.Applicant = nil
	}
	return views, nil
}

// ListForEmployer returns applications to actor's jobs with job and
// applicant summaries. A blank statusFilter matches every status.
func (s *ApplicationService) ListForEmployer(
	ctx context.Context,
	actor authz.Actor,
	statusFilter string,
) ([]*model.ApplicationView, error) {
	if err := s.guard.CheckRole(actor, authz.ActionListEmployerApplications); err != nil {
		return nil, err
	}
	opts := model.ApplicationListOptions{EmployerID: actor.ID}
	if strings.TrimSpace(statusFilter) != "" {
		st, ok := model.ParseApplicationStatus(statusFilter)
		if !ok {
			return nil, apperrors.ValidationField("status", "status must be one of: PENDING, ACCEPTED, REJECTED")
		}
		opts.Status = &st
	}
	views, err := s.apps.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return views, nil
}

// Get returns actor's own application with its job summary.
func (s *ApplicationService) Get(ctx context.Context, actor authz.Actor, applicationID string) (*model.ApplicationView, error) {
	app, err := s.loadOwned(ctx, actor, authz.ActionReadApplication, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return &model.ApplicationView{Application: *app, Job: job.Summary()}, nil
}

// Offer renders the offer letter for actor's ACCEPTED application.
func (s *ApplicationService) Offer(ctx context.Context, actor authz.Actor, applicationID string) (_ *offer.Document, err error) {
	defer s.observe(metrics.ActionOffer, "", time.Now(), &err)
	app, err := s.loadOwned(ctx, actor, authz.ActionFetchOffer, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationAccepted {
		return nil, apperrors.PreconditionFailed("offer letter is only available for accepted applications")
	}
	if s.offers == nil {
		return nil, apperrors.Internal("offer generator not configured")
	}

	in := offer.Input{Application: app}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		job, err := s.jobs.GetByID(gctx, app.JobID)
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		employer, err := s.users.GetByID(gctx, job.EmployerID)
		if err != nil {
			return fmt.Errorf("load employer: %w", err)
		}
		in.Job, in.Employer = job, employer
		return nil
	})
	g.Go(func() error {
		applicant, err := s.users.GetByID(gctx, app.ApplicantID)
		if err != nil {
			return fmt.Errorf("load applicant: %w", err)
		}
		in.Applicant = applicant
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc, err := s.offers.Generate(in)
	if err != nil {
		return nil, fmt.Errorf("generate offer: %w", err)
	}
	s.logger.InfoContext(ctx, "offer generated", "application_id", app.ID, "actor_id", actor.ID)
	return doc, nil
}

func (s *ApplicationService) observe(action, status string, start time.Time, errp *error) {
	metrics.EmitApplicationTransition(s.metrics, metrics.Transition{
		Action:   action,
		Status:   status,
		Duration: time.Since(start),
		Err:      *errp,
	})
}

// loadOwned runs the role check, loads the application and then checks
// that actor is its applicant.
func (s *ApplicationService) loadOwned(
	ctx context.Context,
	actor authz.Actor,
	action authz.Action,
	applicationID string,
) (*model.Application, error) {
	if err := s.guard.CheckRole(actor, action); err != nil {
		return nil, err
	}
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if err := s.guard.Authorize(actor, action, authz.ApplicationResource(app.ID, app.ApplicantID)); err != nil {
		return nil, err
	}
	return app, nil
}
