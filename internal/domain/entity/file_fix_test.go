package entity

import (
	"testing"
	"time"

	"autofix/internal/domain/valueobject"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileFix(t *testing.T) {
	runID := uuid.New()
	fix := NewFileFix(runID, "/srv/app/main.py")

	assert.NotEqual(t, uuid.Nil, fix.ID())
	assert.Equal(t, runID, fix.RunID())
	assert.Equal(t, "/srv/app/main.py", fix.Path())
	assert.Equal(t, valueobject.FixStatusUnmodified, fix.Status())
	assert.False(t, fix.Changed())
	assert.Nil(t, fix.ErrorKind())
}

func TestFileFix_SuccessfulLifecycle(t *testing.T) {
	fix := NewFileFix(uuid.New(), "a.py")

	require.NoError(t, fix.MarkPatched([]string{"bracket_balance", "string_normalize"}))
	assert.Equal(t, valueobject.FixStatusPatched, fix.Status())
	assert.True(t, fix.Changed())

	require.NoError(t, fix.MarkValidated())
	assert.Equal(t, valueobject.FixStatusValidatedOK, fix.Status())
	assert.Equal(t, []string{"bracket_balance", "string_normalize"}, fix.Passes())
}

func TestFileFix_ValidateWithoutChangesStaysUnmodified(t *testing.T) {
	fix := NewFileFix(uuid.New(), "a.py")

	require.NoError(t, fix.MarkValidated())
	assert.Equal(t, valueobject.FixStatusUnmodified, fix.Status())
}

func TestFileFix_Rejection(t *testing.T) {
	fix := NewFileFix(uuid.New(), "a.py")
	require.NoError(t, fix.MarkPatched([]string{"bracket_balance"}))
	require.NoError(t, fix.MarkRejected("invalid syntax (line 4)"))

	assert.Equal(t, valueobject.FixStatusRejected, fix.Status())
	require.NotNil(t, fix.ErrorKind())
	assert.Equal(t, "still_invalid", *fix.ErrorKind())
	require.NotNil(t, fix.ErrorMessage())
	assert.Equal(t, "invalid syntax (line 4)", *fix.ErrorMessage())

	// Rejected is terminal.
	assert.Error(t, fix.MarkValidated())
}

func TestFileFix_FailureFromAnyNonTerminalState(t *testing.T) {
	fresh := NewFileFix(uuid.New(), "a.py")
	require.NoError(t, fresh.MarkFailed("file_not_found", "no such file"))
	assert.Equal(t, valueobject.FixStatusFailed, fresh.Status())

	patched := NewFileFix(uuid.New(), "b.py")
	require.NoError(t, patched.MarkPatched([]string{"bracket_balance"}))
	require.NoError(t, patched.MarkFailed("write_failed", "disk full"))
	assert.Equal(t, valueobject.FixStatusFailed, patched.Status())

	// Failed is terminal.
	assert.Error(t, patched.MarkPatched(nil))
}

func TestFileFix_SetDuration(t *testing.T) {
	fix := NewFileFix(uuid.New(), "a.py")
	fix.SetDuration(42 * time.Millisecond)
	assert.Equal(t, 42*time.Millisecond, fix.Duration())
}

func TestRestoreFileFix(t *testing.T) {
	id, runID := uuid.New(), uuid.New()
	kind, msg := "still_invalid", "unexpected token"
	created := time.Now().Add(-time.Hour)

	fix := RestoreFileFix(id, runID, "a.py", valueobject.FixStatusRejected,
		[]string{"string_normalize"}, true, &kind, &msg,
		15*time.Millisecond, created, created)

	assert.Equal(t, id, fix.ID())
	assert.Equal(t, valueobject.FixStatusRejected, fix.Status())
	assert.True(t, fix.Changed())
	assert.Equal(t, 15*time.Millisecond, fix.Duration())
	assert.Equal(t, created, fix.CreatedAt())
}
