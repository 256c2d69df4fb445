package store

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports a Postgres unique constraint violation
// (SQLSTATE 23505), so inserts can answer with a conflict instead of a
// generic internal error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
