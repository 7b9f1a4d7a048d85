package data

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/target/hiring-api/internal/errors"
)

const defaultListLimit = 50

// mapErr translates a driver error raised while running op on noun.
// Absent rows become NotFound naming the noun; constraint failures are
// classified by MapDBError; anything else is wrapped with op.
func mapErr(op, noun string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundf("%s not found", noun)
	}
	mapped := apperrors.MapDBError(err)
	var appErr *apperrors.AppError
	if errors.As(mapped, &appErr) {
		return mapped
	}
	return fmt.Errorf("%s: %w", op, err)
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return limit, max(offset, 0)
}
