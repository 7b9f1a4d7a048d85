package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/target/hiring-api/internal/core"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/authz"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	Users        *UserService               // Required
	Jobs         *JobService                // Required
	Applications core.ApplicationRepository // Required
}

// AdminService exposes directory-wide listings and job removal to admins.
type AdminService struct {
	users *UserService
	jobs  *JobService
	apps  core.ApplicationRepository
	guard authz.Guard
}

// NewAdminService constructs an AdminService. It panics on a missing dependency.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	if opts.Users == nil || opts.Jobs == nil || opts.Applications == nil {
		panic("users, jobs and applications are required")
	}
	return &AdminService{users: opts.Users, jobs: opts.Jobs, apps: opts.Applications, guard: authz.New()}
}

// ListUsers returns users. roleFilter accepts "Employer", "job_seeker" and
// similar forms; blank means all.
func (s *AdminService) ListUsers(
	ctx context.Context,
	actor authz.Actor,
	roleFilter string,
	limit, offset int,
) ([]*model.User, error) {
	if err := s.guard.CheckRole(actor, authz.ActionAdminListUsers); err != nil {
		return nil, err
	}
	opts := model.UserListOptions{Limit: limit, Offset: offset}
	if strings.TrimSpace(roleFilter) != "" {
		role, ok := domainauth.ParseRole(roleFilter)
		if !ok {
			return nil, apperrors.ValidationField("role", "role must be one of: admin, employer, job_seeker, guest")
		}
		opts.Role = &role
	}
	return s.users.List(ctx, opts)
}

// ListJobs returns the whole catalog, newest first.
func (s *AdminService) ListJobs(ctx context.Context, actor authz.Actor, limit, offset int) ([]*model.Job, error) {
	if err := s.guard.CheckRole(actor, authz.ActionAdminListJobs); err != nil {
		return nil, err
	}
	return s.jobs.Search(ctx, model.JobSearch{Limit: limit, Offset: offset})
}

// DeleteJob removes any job. Its applications are removed with it.
func (s *AdminService) DeleteJob(ctx context.Context, actor authz.Actor, id string) error {
	if err := s.guard.CheckRole(actor, authz.ActionAdminDeleteJob); err != nil {
		return err
	}
	return s.jobs.delete(ctx, actor, id)
}

// ListApplications returns every application with job and applicant summaries.
func (s *AdminService) ListApplications(
	ctx context.Context,
	actor authz.Actor,
	limit, offset int,
) ([]*model.ApplicationView, error) {
	if err := s.guard.CheckRole(actor, authz.ActionAdminListApplications); err != nil {
		return nil, err
	}
	views, err := s.apps.List(ctx, model.ApplicationListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return views, nil
}
