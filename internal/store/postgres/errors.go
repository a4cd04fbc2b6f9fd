// Package postgres implements the storage ports on PostgreSQL through a
// pgxpool.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sportsreg/sportsreg/internal/shared"
)

// mapError folds driver errors into the shared taxonomy. what names the
// addressed resource in the resulting message.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s already exists", shared.ErrConflict, what)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing row", shared.ErrNotFound, what)
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return fmt.Errorf("%w: %s: %s", shared.ErrValidation, what, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrStoreUnavailable, what, err)
}
