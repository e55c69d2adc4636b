package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "file_not_found", err: ErrFileNotFound, expected: "file_not_found"},
		{name: "read_failed", err: ErrReadFailed, expected: "read_failed"},
		{name: "write_failed", err: ErrWriteFailed, expected: "write_failed"},
		{name: "still_invalid", err: ErrStillInvalid, expected: "still_invalid"},
		{name: "unrelated_error", err: errors.New("disk on fire"), expected: "unknown"},
		{name: "nil_error", err: nil, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestKindOf_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("reading /srv/app/main.py: %w", ErrReadFailed)
	assert.Equal(t, "read_failed", KindOf(wrapped))

	doubleWrapped := fmt.Errorf("pass 2: %w", fmt.Errorf("commit: %w", ErrWriteFailed))
	assert.Equal(t, "write_failed", KindOf(doubleWrapped))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrFileNotFound, ErrReadFailed, ErrWriteFailed, ErrStillInvalid,
		ErrNoFiles, ErrRunNotFound, ErrNoDatabaseURL, ErrInvalidInput,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}
