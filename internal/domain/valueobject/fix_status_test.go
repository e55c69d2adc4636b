package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixStatus(t *testing.T) {
	for _, valid := range []string{"unmodified", "patched", "validated_ok", "rejected", "failed"} {
		status, err := NewFixStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	for _, invalid := range []string{"", "done", "UNMODIFIED", "patched "} {
		_, err := NewFixStatus(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestFixStatus_IsTerminal(t *testing.T) {
	assert.False(t, FixStatusPatched.IsTerminal())
	for _, terminal := range []FixStatus{FixStatusUnmodified, FixStatusValidatedOK, FixStatusRejected, FixStatusFailed} {
		assert.True(t, terminal.IsTerminal(), "%s should be terminal", terminal)
	}
}

func TestFixStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    FixStatus
		to      FixStatus
		allowed bool
	}{
		{FixStatusUnmodified, FixStatusPatched, true},
		{FixStatusUnmodified, FixStatusFailed, true},
		{FixStatusUnmodified, FixStatusValidatedOK, false},
		{FixStatusUnmodified, FixStatusRejected, false},
		{FixStatusPatched, FixStatusValidatedOK, true},
		{FixStatusPatched, FixStatusRejected, true},
		{FixStatusPatched, FixStatusFailed, true},
		{FixStatusPatched, FixStatusUnmodified, false},
		{FixStatusValidatedOK, FixStatusPatched, false},
		{FixStatusRejected, FixStatusPatched, false},
		{FixStatusFailed, FixStatusPatched, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
