// Package domain provides domain-specific error definitions and utilities.
package domain

import "errors"

// Repair-related errors. These replace the original tooling's policy of
// continuing past every exception: callers receive explicit kinds and decide
// whether the run continues.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrReadFailed   = errors.New("file read failed")
	ErrWriteFailed  = errors.New("file write failed")
	ErrStillInvalid = errors.New("rewrite still fails to parse")
	ErrNoFiles      = errors.New("no candidate files found")
)

// Run-related errors.
var (
	ErrRunNotFound = errors.New("fix run not found")
)

// Provisioning errors.
var (
	ErrNoDatabaseURL = errors.New("no database URL could be provisioned")
)

// General domain errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)

// KindOf maps a repair error to its taxonomy label for persistence.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrReadFailed):
		return "read_failed"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, ErrStillInvalid):
		return "still_invalid"
	default:
		return "unknown"
	}
}
