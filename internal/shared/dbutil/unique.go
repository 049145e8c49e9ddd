package dbutil

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgUniqueViolation is the SQLSTATE postgres reports for unique index conflicts
const PgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint conflict. When
// constraint is not empty the violated constraint must match it. Drivers that
// do not expose structured errors (sqlite) are matched on the message.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == PgUniqueViolation &&
			(constraint == "" || pgErr.ConstraintName == constraint)
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unique constraint failed") {
		// sqlite names columns, not constraints
		return true
	}
	return strings.Contains(errMsg, "duplicate key value") &&
		(constraint == "" || strings.Contains(errMsg, strings.ToLower(constraint)))
}
