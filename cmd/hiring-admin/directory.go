package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	redisadapter "github.com/target/hiring-api/internal/adapters/redis"
	"github.com/target/hiring-api/internal/bootstrap"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/model"
)

const (
	defaultQueryTimeout = 30 * time.Second
	defaultListLimit    = 50
	maxListLimit        = 500
)

type listUsersOptions struct {
	Role   *domainauth.Role
	Limit  int
	Offset int
}

type listApplicationsOptions struct {
	ApplicantID string
	EmployerID  string
	Status      *model.ApplicationStatus
	Limit       int
	Offset      int
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		users, listErr := data.NewUserRepo(db).List(ctx, model.UserListOptions{
			Role:   opts.Role,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		})
		if listErr != nil {
			return fmt.Errorf("list users: %w", listErr)
		}
		return renderUsers(cmdCtx.Out, users)
	})
}

func runListApplications(cmdCtx *commandContext, args []string) error {
	opts, err := parseListApplicationsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		apps, listErr := data.NewApplicationRepo(db).List(ctx, model.ApplicationListOptions{
			ApplicantID: opts.ApplicantID,
			EmployerID:  opts.EmployerID,
			Status:      opts.Status,
			Limit:       opts.Limit,
			Offset:      opts.Offset,
		})
		if listErr != nil {
			return fmt.Errorf("list applications: %w", listErr)
		}
		return renderApplications(cmdCtx.Out, apps)
	})
}

func runRevokeSession(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke-session", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Session ID to delete (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessionID := strings.TrimSpace(*id)
	if sessionID == "" {
		return errors.New("--id is required")
	}
	if !cmdCtx.Config.UsesRedis() {
		return errors.New("redis is disabled; in-memory sessions end when the service restarts")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultQueryTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	store := redisadapter.NewSessionStoreWithPrefix(client, cmdCtx.Config.Redis.SessionPrefix)
	if err := store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return writef(cmdCtx.Out, "Session %s revoked.\n", sessionID)
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		opts listUsersOptions
		role string
	)
	fs.StringVar(&role, "role", "", "Filter by role (admin, employer, job_seeker)")
	fs.IntVar(&opts.Limit, "limit", defaultListLimit, "Maximum rows to print")
	fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")

	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	if role != "" {
		r, ok := domainauth.ParseRole(role)
		if !ok {
			return listUsersOptions{}, fmt.Errorf("unknown role %q", role)
		}
		opts.Role = &r
	}
	if err := validatePage(opts.Limit, opts.Offset); err != nil {
		return listUsersOptions{}, err
	}
	return opts, nil
}

func parseListApplicationsFlags(args []string) (listApplicationsOptions, error) {
	fs := flag.NewFlagSet("list-applications", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		opts   listApplicationsOptions
		status string
	)
	fs.StringVar(&opts.ApplicantID, "applicant-id", "", "Only applications by this applicant")
	fs.StringVar(&opts.EmployerID, "employer-id", "", "Only applications to this employer's jobs")
	fs.StringVar(&status, "status", "", "Filter by status (PENDING, ACCEPTED, REJECTED)")
	fs.IntVar(&opts.Limit, "limit", defaultListLimit, "Maximum rows to print")
	fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")

	if err := fs.Parse(args); err != nil {
		return listApplicationsOptions{}, err
	}
	opts.ApplicantID = strings.TrimSpace(opts.ApplicantID)
	opts.EmployerID = strings.TrimSpace(opts.EmployerID)
	if status != "" {
		s, ok := model.ParseApplicationStatus(status)
		if !ok {
			return listApplicationsOptions{}, fmt.Errorf("unknown status %q", status)
		}
		opts.Status = &s
	}
	if err := validatePage(opts.Limit, opts.Offset); err != nil {
		return listApplicationsOptions{}, err
	}
	return opts, nil
}

func validatePage(limit, offset int) error {
	if limit <= 0 || limit > maxListLimit {
		return fmt.Errorf("--limit must be between 1 and %d", maxListLimit)
	}
	if offset < 0 {
		return errors.New("--offset must not be negative")
	}
	return nil
}

func renderUsers(w io.Writer, users []*model.User) error {
	if len(users) == 0 {
		return writeln(w, "No users found.")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED"); err != nil {
		return err
	}
	for _, u := range users {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.DisplayName(), u.Email, u.Role, u.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderApplications(w io.Writer, apps []*model.ApplicationView) error {
	if len(apps) == 0 {
		return writeln(w, "No applications found.")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tSTATUS\tJOB\tAPPLICANT\tUPDATED"); err != nil {
		return err
	}
	for _, a := range apps {
		job := a.JobID
		if a.Job != nil {
			job = a.Job.Title
		}
		applicant := a.ApplicantID
		if a.Applicant != nil {
			applicant = a.Applicant.Name
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Status, job, applicant, a.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
