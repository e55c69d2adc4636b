package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, Message: "pg error " + code}
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsConstraintViolationError(t *testing.T) {
	for _, code := range []string{"23505", "23503", "23514", "23502"} {
		assert.True(t, IsConstraintViolationError(pgError(code)), "code %s", code)
	}
	assert.True(t, IsConstraintViolationError(ErrAlreadyExists))
	assert.False(t, IsConstraintViolationError(pgError("42601")), "syntax error is not a constraint")
	assert.False(t, IsConstraintViolationError(nil))
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, IsConnectionError(pgError("08006")), "connection failure class")
	assert.True(t, IsConnectionError(pgError("08003")), "connection does not exist")
	assert.True(t, IsConnectionError(ErrConnectionFailed))
	assert.False(t, IsConnectionError(pgError("23505")))
	assert.False(t, IsConnectionError(pgError("57P01")), "only class 08 counts")
	assert.False(t, IsConnectionError(nil))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "save run"))

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: pgx.ErrNoRows, expected: ErrNotFound},
		{name: "unique violation", err: pgError("23505"), expected: ErrAlreadyExists},
		{name: "foreign key violation", err: pgError("23503"), expected: ErrForeignKeyViolation},
		{name: "check violation", err: pgError("23514"), expected: ErrConstraintViolation},
		{name: "not null violation", err: pgError("23502"), expected: ErrConstraintViolation},
		{name: "connection failure", err: pgError("08006"), expected: ErrConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err, "save run")
			require.Error(t, wrapped)
			assert.ErrorIs(t, wrapped, tt.expected)
			assert.Contains(t, wrapped.Error(), "save run failed")
		})
	}
}

func TestWrapError_PassesThroughUnknownErrors(t *testing.T) {
	cause := errors.New("weird driver state")
	wrapped := WrapError(cause, "update run")
	assert.ErrorIs(t, wrapped, cause)
}
