package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/brigade/services/inventory/domain"
)

// PostgreSQL error codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintErrors maps named constraints to the domain error they enforce.
var constraintErrors = map[string]error{
	"inventory_items_code_key":                       domain.ErrItemAlreadyExists,
	"inventory_items_category_fkey":                  domain.ErrCategoryNotFound,
	"inventory_items_quantity_check":                 domain.ErrNegativeQuantity,
	"inventory_items_initial_quantity_check":         domain.ErrInvalidQuantity,
	"inventory_items_min_stock_check":                domain.ErrInvalidItem,
	"ppe_assignments_item_id_fkey":                   domain.ErrItemNotFound,
	"ppe_assignments_person_id_fkey":                 domain.ErrPersonNotFound,
	"ppe_assignments_quantity_check":                 domain.ErrInvalidQuantity,
	"ppe_assignments_outstanding_check":              domain.ErrReturnExceedsHolding,
	"ppe_assignments_status_check":                   domain.ErrInvalidStatus,
	"inventory_movements_item_id_fkey":               domain.ErrItemNotFound,
	"inventory_movements_responsible_person_id_fkey": domain.ErrPersonNotFound,
	"inventory_movements_linked_assignment_id_fkey":  domain.ErrAssignmentNotFound,
	"inventory_movements_type_check":                 domain.ErrInvalidInput,
	"inventory_movements_direction_check":            domain.ErrInvalidInput,
}

// mapError translates driver errors into domain errors. sql.ErrNoRows becomes
// notFound; constraint violations become the error of the violated constraint;
// anything else is wrapped with op and left for the caller to classify.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
			if derr, ok := constraintErrors[pgErr.ConstraintName]; ok {
				return fmt.Errorf("%w (%s)", derr, pgErr.ConstraintName)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isForeignKeyViolation reports whether err is a 23503 raised by Postgres.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
