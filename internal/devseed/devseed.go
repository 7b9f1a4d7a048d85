package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/authz"
	"github.com/target/hiring-api/internal/domain/model"
	"github.com/target/hiring-api/internal/ports"
	"github.com/target/hiring-api/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Users *service.UserService
	Jobs  *service.JobService
	Roles ports.RoleMapper
}

// NewServices constructs all required services for seeding using the provided DB.
func NewServices(db *sql.DB, roles ports.RoleMapper) Services {
	return Services{
		Users: service.NewUserService(service.UserServiceOptions{Repo: data.NewUserRepo(db)}),
		Jobs:  service.NewJobService(service.JobServiceOptions{Repo: data.NewJobRepo(db)}),
		Roles: roles,
	}
}

// Run upserts every persona as a user and gives each employer persona a
// handful of open jobs. Employers that already own jobs are left alone, so
// Run is safe to repeat.
func Run(ctx context.Context, svcs Services, personas []config.DevPersona, logger *slog.Logger) error {
	if svcs.Users == nil || svcs.Jobs == nil || svcs.Roles == nil {
		return errors.New("devseed: users, jobs and roles are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	failures := 0
	for _, p := range personas {
		role := svcs.Roles.Map(p.Groups)
		user, err := svcs.Users.SyncIdentity(ctx, domainauth.Identity{
			UserID:    p.UserID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Groups:    p.Groups,
		}, role)
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed user", "user_id", p.UserID, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded user", "user_id", user.ID, "role", role)

		if role != domainauth.RoleEmployer {
			continue
		}
		failures += seedJobs(ctx, svcs.Jobs, authz.Actor{ID: user.ID, Role: role}, logger)
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedJobs(ctx context.Context, jobs *service.JobService, employer authz.Actor, logger *slog.Logger) int {
	existing, err := jobs.Search(ctx, model.JobSearch{EmployerID: employer.ID, Limit: 1})
	if err != nil {
		logger.ErrorContext(ctx, "failed to list employer jobs", "employer_id", employer.ID, "error", err)
		return 1
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "employer already has jobs", "employer_id", employer.ID)
		return 0
	}

	failures := 0
	for _, req := range defaultJobs() {
		job, err := jobs.Create(ctx, employer, req)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create job", "title", req.Title, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "created job", "job_id", job.ID, "title", job.Title)
	}
	return failures
}

func defaultJobs() []*model.CreateJobRequest {
	return []*model.CreateJobRequest{
		{
			Title:          "Backend Engineer",
			Description:    "Build and operate the services behind our hiring platform. Go and PostgreSQL experience preferred.",
			Location:       "Minneapolis, MN",
			EmploymentType: model.EmploymentFullTime,
		},
		{
			Title:          "Product Designer",
			Description:    "Shape the applicant and employer experience from research through polished UI.",
			Location:       "Remote",
			EmploymentType: model.EmploymentContract,
		},
		{
			Title:          "Data Analyst Intern",
			Description:    "Summer internship analysing hiring funnel metrics alongside the analytics team.",
			Location:       "Brooklyn Park, MN",
			EmploymentType: model.EmploymentInternship,
		},
	}
}
