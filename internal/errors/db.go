package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (job_id, applicant_id)=(...) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "Key (job_id)=(...) is not present in table "jobs"."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
	// "Key (id)=(...) is still referenced from table "applications"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
)

// constraintMessages holds user-facing messages for named constraints in the schema.
var constraintMessages = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"applications_job_applicant_key": "already applied",
	"users_pkey":                     "user already exists",
	"jobs_pkey":                      "job already exists",
	"applications_pkey":              "application already exists",
}

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - missing parent rows → NotFound; rows still referenced → ForeignKey
//   - check, not-null and malformed values → Validation
//   - context deadline/cancel → Timeout/Canceled
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, "request was canceled")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, ErrCodeNotFound, "resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation:
		return &AppError{Code: ErrCodeValidation, Message: "invalid value", Field: pgErr.ColumnName, Cause: pgErr}
	case pgerrcode.NotNullViolation:
		return &AppError{Code: ErrCodeValidation, Message: "value is required", Field: pgErr.ColumnName, Cause: pgErr}
	case pgerrcode.InvalidTextRepresentation, pgerrcode.StringDataRightTruncationDataException:
		return Wrap(pgErr, ErrCodeValidation, "malformed value")
	default:
		return Wrap(pgErr, ErrCodeInternal, "database error")
	}
}

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	message, ok := constraintMessages[pgErr.ConstraintName]
	if !ok {
		message = "value already exists"
	}
	field := pgErr.ColumnName
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}
	return &AppError{Code: ErrCodeConflict, Message: message, Field: field, Cause: pgErr}
}

func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return Wrapf(pgErr, ErrCodeNotFound, "referenced %s not found", tableNoun(m[1]))
	}
	if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return Wrapf(pgErr, ErrCodeForeignKey, "still referenced by %s", m[1])
	}
	return Wrap(pgErr, ErrCodeForeignKey, "foreign key violation")
}

// tableNoun turns a table name into the singular noun used in messages.
func tableNoun(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	switch table {
	case "jobs":
		return "job"
	case "users":
		return "user"
	case "applications":
		return "application"
	}
	return strings.ReplaceAll(table, "_", " ")
}
