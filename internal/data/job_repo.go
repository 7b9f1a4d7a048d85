package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/hiring-api/internal/data/database"
	"github.com/target/hiring-api/internal/data/pgxutil"
	"github.com/target/hiring-api/internal/domain/model"
)

// JobRepo stores job postings in PostgreSQL.
type JobRepo struct {
	DB *sql.DB
}

// NewJobRepo creates a JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db}
}

const (
	jobSelectColumns = `id, title, description, location, employment_type, employer_id, created_at, updated_at`

	jobInsertQuery = `
		INSERT INTO jobs (id, title, description, location, employment_type, employer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + jobSelectColumns

	jobGetByIDQuery = `SELECT ` + jobSelectColumns + ` FROM jobs WHERE id = $1`

	// employer_id is deliberately absent: ownership never changes.
	jobUpdateQuery = `
		UPDATE jobs
		SET title = $2, description = $3, location = $4, employment_type = $5, updated_at = $6
		WHERE id = $1
		RETURNING ` + jobSelectColumns
)

func jobColumns() []string {
	return strings.Split(strings.ReplaceAll(jobSelectColumns, " ", ""), ",")
}

// Create inserts job as given; the caller assigns ID and timestamps.
func (r *JobRepo) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	return r.one(ctx, "create job", jobInsertQuery,
		job.ID, job.Title, job.Description, job.Location, job.EmploymentType,
		job.EmployerID, job.CreatedAt, job.UpdatedAt,
	)
}

// GetByID returns the job or NotFound.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	return r.one(ctx, "get job", jobGetByIDQuery, id)
}

// Update writes the mutable fields of job.
func (r *JobRepo) Update(ctx context.Context, job *model.Job) (*model.Job, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	return r.one(ctx, "update job", jobUpdateQuery,
		job.ID, job.Title, job.Description, job.Location, job.EmploymentType, job.UpdatedAt,
	)
}

// Delete removes the job. Its applications go with it through ON DELETE CASCADE.
func (r *JobRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, mapErr("delete job", "job", err)
	}
	return affected > 0, nil
}

// Search filters by case-insensitive substring of title and location and
// exact employment type, newest first.
func (r *JobRepo) Search(ctx context.Context, q model.JobSearch) ([]*model.Job, error) {
	limit, offset := normalizePage(q.Limit, q.Offset)

	opts := []database.ListQueryOption{
		database.WithColumns(jobColumns()...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if t := strings.TrimSpace(q.Title); t != "" {
		opts = append(opts, database.WithCondition(database.WhereCond("title", database.ILike, containsPattern(t))))
	}
	if l := strings.TrimSpace(q.Location); l != "" {
		opts = append(opts, database.WithCondition(database.WhereCond("location", database.ILike, containsPattern(l))))
	}
	if q.EmploymentType != nil {
		opts = append(opts, database.WithCondition(
			database.WhereCond("employment_type", database.Equal, string(*q.EmploymentType)),
		))
	}
	if q.EmployerID != "" {
		opts = append(opts, database.WithCondition(database.WhereCond("employer_id", database.Equal, q.EmployerID)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("jobs", opts...))

	var rows []model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer res.Close()
		rows, err = pgx.CollectRows(res, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, mapErr("search jobs", "job", err)
	}

	out := make([]*model.Job, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *JobRepo) one(ctx context.Context, op, query string, args ...any) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, mapErr(op, "job", err)
	}
	return &out, nil
}
