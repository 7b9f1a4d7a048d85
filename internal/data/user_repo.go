package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/target/hiring-api/internal/data/database"
	"github.com/target/hiring-api/internal/data/pgxutil"
	"github.com/target/hiring-api/internal/domain/model"
)

// UserRepo is the PostgreSQL user directory.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const (
	userSelectColumns = `id, first_name, last_name, email, role, created_at, updated_at`

	// created_at survives re-login; profile fields follow the identity provider.
	userUpsertQuery = `
		INSERT INTO users (id, first_name, last_name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			email      = EXCLUDED.email,
			role       = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userSelectColumns

	userGetByIDQuery = `SELECT ` + userSelectColumns + ` FROM users WHERE id = $1`
)

// Upsert inserts the user or refreshes its profile fields.
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}
	return r.one(ctx, "upsert user", userUpsertQuery,
		user.ID, user.FirstName, user.LastName, user.Email, string(user.Role), user.UpdatedAt,
	)
}

// GetByID returns the user or NotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, "get user", userGetByIDQuery, id)
}

// List returns users, optionally filtered by role, newest first.
func (r *UserRepo) List(ctx context.Context, opts model.UserListOptions) ([]*model.User, error) {
	limit, offset := normalizePage(opts.Limit, opts.Offset)
	qopts := []database.ListQueryOption{
		database.WithColumns("id", "first_name", "last_name", "email", "role", "created_at", "updated_at"),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Role != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("role", database.Equal, string(*opts.Role))))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("users", qopts...))

	var rows []model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer res.Close()
		rows, err = pgx.CollectRows(res, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, mapErr("list users", "user", err)
	}
	out := make([]*model.User, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *UserRepo) one(ctx context.Context, op, query string, args ...any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, mapErr(op, "user", err)
	}
	return &out, nil
}
