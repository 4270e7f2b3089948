package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrInsufficientStamps   = errors.New("not enough stamps")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotCancellable  = errors.New("order already in progress")
	ErrReferentialViolation = errors.New("referenced row does not exist")
	ErrMigrationConflict    = errors.New("migration conflict")
)

// Postgres error codes, class 23 (integrity constraint violation).
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// classifyPgError maps foreign-key failures onto the service error
// taxonomy so callers can errors.Is them without importing pgconn.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w (%s)", ErrReferentialViolation, pgErr.ConstraintName)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
