package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
)

const pqUniqueViolation = "23505"

// errNoRowsUpdated marks an UPDATE that matched no row, which surfaces
// as a not-found through wrapDBError.
var errNoRowsUpdated = sql.ErrNoRows

// sanitizeSortColumn restricts ORDER BY input to known audit columns so
// filter values can never inject SQL.
func sanitizeSortColumn(column string) string {
	switch column {
	case "created_at", "updated_at", "id":
		return column
	default:
		return "created_at"
	}
}

func sanitizeSortOrder(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

// wrapDBError maps low-level driver errors onto the service error
// taxonomy: missing rows, unique violations and everything else.
func wrapDBError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithHintf("failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}
