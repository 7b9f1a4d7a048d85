package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data/pgxutil"
	"github.com/target/hiring-api/internal/domain/model"
)

// ApplicationRepo stores applications in PostgreSQL.
//
// Uniqueness of (job_id, applicant_id) is enforced by the
// applications_job_applicant_key constraint. Status changes and withdrawals
// are single conditional statements guarded by status = 'PENDING', so
// concurrent decisions and withdrawals on the same row serialize in the
// database and at most one of them takes effect.
type ApplicationRepo struct {
	DB *sql.DB
}

// NewApplicationRepo creates an ApplicationRepo.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db}
}

const (
	appSelectColumns = `id, job_id, applicant_id, status, created_at, updated_at`

	appInsertQuery = `
		INSERT INTO applications (id, job_id, applicant_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + appSelectColumns

	appGetByIDQuery = `SELECT ` + appSelectColumns + ` FROM applications WHERE id = $1`

	appTransitionQuery = `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + appSelectColumns

	appDeletePendingQuery = `
		DELETE FROM applications
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + appSelectColumns

	// Empty-string parameters disable their filter; a NULL limit means no limit.
	appListQuery = `
		SELECT a.id, a.job_id, a.applicant_id, a.status, a.created_at, a.updated_at,
		       j.title, j.location, j.employment_type, j.employer_id,
		       u.first_name, u.last_name, u.email
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users u ON u.id = a.applicant_id
		WHERE ($1::text = '' OR a.applicant_id = $1)
		  AND ($2::text = '' OR j.employer_id = $2)
		  AND ($3::text = '' OR a.status = $3)
		ORDER BY a.created_at DESC, a.id ASC
		LIMIT $4 OFFSET $5`
)

// Create inserts app. A second application for the same job and applicant
// fails with Conflict "already applied"; a job that no longer exists fails
// with NotFound.
func (r *ApplicationRepo) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	if app == nil {
		return nil, errors.New("application is required")
	}
	var out model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = collectApplication(ctx, conn, appInsertQuery,
			app.ID, app.JobID, app.ApplicantID, string(app.Status), app.CreatedAt, app.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return nil, mapErr("create application", "application", err)
	}
	return &out, nil
}

// GetByID returns the application or NotFound.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var out model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = collectApplication(ctx, conn, appGetByIDQuery, id)
		return err
	})
	if err != nil {
		return nil, mapErr("get application", "application", err)
	}
	return &out, nil
}

// TransitionStatus moves a PENDING application to p.To. When the row exists
// but is no longer PENDING the current row is returned with swapped=false.
func (r *ApplicationRepo) TransitionStatus(
	ctx context.Context,
	p core.TransitionParams,
) (*model.Application, bool, error) {
	return r.compareAndSwap(ctx, "transition application", appTransitionQuery, p.ID, string(p.To), p.UpdatedAt)
}

// DeleteIfPending removes a PENDING application and returns the removed row.
// When the row exists in another status it is returned with deleted=false.
func (r *ApplicationRepo) DeleteIfPending(ctx context.Context, id string) (*model.Application, bool, error) {
	return r.compareAndSwap(ctx, "withdraw application", appDeletePendingQuery, id)
}

// compareAndSwap runs a statement guarded by status = 'PENDING' whose first
// argument is the application ID. If it matched nothing, the current row is
// read on the same connection to tell "not pending" from "absent".
func (r *ApplicationRepo) compareAndSwap(
	ctx context.Context,
	op, query string,
	args ...any,
) (*model.Application, bool, error) {
	var (
		out     model.Application
		swapped bool
	)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = collectApplication(ctx, conn, query, args...)
		if err == nil {
			swapped = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		out, err = collectApplication(ctx, conn, appGetByIDQuery, args[0])
		return err
	})
	if err != nil {
		return nil, false, mapErr(op, "application", err)
	}
	return &out, swapped, nil
}

// List returns application views joined with their job and applicant,
// newest first.
func (r *ApplicationRepo) List(
	ctx context.Context,
	opts model.ApplicationListOptions,
) ([]*model.ApplicationView, error) {
	status := ""
	if opts.Status != nil {
		status = string(*opts.Status)
	}
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	var rows []model.ApplicationView
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, appListQuery,
			opts.ApplicantID, opts.EmployerID, status, limit, max(opts.Offset, 0),
		)
		if err != nil {
			return err
		}
		defer res.Close()
		rows, err = pgx.CollectRows(res, scanApplicationView)
		return err
	})
	if err != nil {
		return nil, mapErr("list applications", "application", err)
	}

	out := make([]*model.ApplicationView, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func collectApplication(ctx context.Context, conn *pgx.Conn, query string, args ...any) (model.Application, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return model.Application{}, err
	}
	defer rows.Close()
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Application])
}

func scanApplicationView(row pgx.CollectableRow) (model.ApplicationView, error) {
	var (
		v    model.ApplicationView
		job  model.JobSummary
		user model.User
	)
	err := row.Scan(
		&v.ID, &v.JobID, &v.ApplicantID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		&job.Title, &job.Location, &job.EmploymentType, &job.EmployerID,
		&user.FirstName, &user.LastName, &user.Email,
	)
	if err != nil {
		return v, err
	}
	job.ID = v.JobID
	user.ID = v.ApplicantID
	v.Job = &job
	v.Applicant = user.Summary()
	return v, nil
}
