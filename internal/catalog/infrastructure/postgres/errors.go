package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	catalog "train-station/internal/catalog/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapConstraintError translates Postgres constraint violations into domain
// errors so handlers can shape the response.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return catalog.ErrDuplicate
		case codeForeignKeyViolation:
			return catalog.ErrReferenced
		}
	}
	return err
}
