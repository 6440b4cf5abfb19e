package postgres

import (
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const codeUniqueViolation = "23505"

// IsUniqueViolation reports a unique-constraint failure. An empty constraint
// matches any.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
