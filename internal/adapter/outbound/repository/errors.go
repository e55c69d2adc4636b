package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by the run repository.
var (
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyExists       = errors.New("record already exists")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnectionFailed    = errors.New("database connection failed")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// pgCodeSentinels maps the SQLSTATE codes the autofix schema can actually
// raise to their sentinels: 23505 from the fix_runs/file_fixes primary keys,
// 23503 from file_fixes.run_id, and 23514/23502 from the status CHECK and
// NOT NULL columns.
var pgCodeSentinels = map[string]error{
	"23505": ErrAlreadyExists,
	"23503": ErrForeignKeyViolation,
	"23514": ErrConstraintViolation,
	"23502": ErrConstraintViolation,
}

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return err != nil && (errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound))
}

// IsConstraintViolationError reports whether err stems from one of the
// schema's constraints.
func IsConstraintViolationError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := pgCodeSentinels[pgErr.Code]
		return ok
	}
	return errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrForeignKeyViolation)
}

// IsConnectionError reports whether err is a connection failure
// (SQLSTATE class 08).
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
		return true
	}
	return errors.Is(err, ErrConnectionFailed)
}

// WrapError translates a driver error into the repository's sentinel
// taxonomy, keeping the operation name for context.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if IsNotFoundError(err) {
		return fmt.Errorf("%s failed: %w", operation, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := pgCodeSentinels[pgErr.Code]; ok {
			return fmt.Errorf("%s failed: %w", operation, sentinel)
		}
	}
	if IsConstraintViolationError(err) {
		return fmt.Errorf("%s failed: %w", operation, ErrConstraintViolation)
	}
	if IsConnectionError(err) {
		return fmt.Errorf("%s failed: %w", operation, ErrConnectionFailed)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
