package entity

import (
	"fmt"
	"time"

	"autofix/internal/domain/valueobject"

	"github.com/google/uuid"
)

// FileFix tracks the repair lifecycle of a single file within a run:
// unmodified -> patched -> {validated_ok, rejected}, or failed on I/O errors.
// The original content is held in memory for the duration of the attempt so a
// rejected rewrite can be restored without touching the backup.
type FileFix struct {
	id        uuid.UUID
	runID     uuid.UUID
	path      string
	status    valueobject.FixStatus
	passes    []string
	changed   bool
	errorKind *string
	errorMsg  *string
	duration  time.Duration
	createdAt time.Time
	updatedAt time.Time
}

// NewFileFix creates a FileFix in the unmodified state.
func NewFileFix(runID uuid.UUID, path string) *FileFix {
	now := time.Now()
	return &FileFix{
		id:        uuid.New(),
		runID:     runID,
		path:      path,
		status:    valueobject.FixStatusUnmodified,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreFileFix creates a FileFix entity from stored data.
func RestoreFileFix(
	id uuid.UUID,
	runID uuid.UUID,
	path string,
	status valueobject.FixStatus,
	passes []string,
	changed bool,
	errorKind *string,
	errorMsg *string,
	duration time.Duration,
	createdAt time.Time,
	updatedAt time.Time,
) *FileFix {
	return &FileFix{
		id:        id,
		runID:     runID,
		path:      path,
		status:    status,
		passes:    passes,
		changed:   changed,
		errorKind: errorKind,
		errorMsg:  errorMsg,
		duration:  duration,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the fix ID.
func (f *FileFix) ID() uuid.UUID {
	return f.id
}

// RunID returns the owning run ID.
func (f *FileFix) RunID() uuid.UUID {
	return f.runID
}

// Path returns the file path.
func (f *FileFix) Path() string {
	return f.path
}

// Status returns the current fix status.
func (f *FileFix) Status() valueobject.FixStatus {
	return f.status
}

// Passes returns the names of the repair passes that changed the content.
func (f *FileFix) Passes() []string {
	return f.passes
}

// Changed reports whether any pass altered the content.
func (f *FileFix) Changed() bool {
	return f.changed
}

// ErrorKind returns the error taxonomy kind, nil on success.
func (f *FileFix) ErrorKind() *string {
	return f.errorKind
}

// ErrorMessage returns the error detail, nil on success.
func (f *FileFix) ErrorMessage() *string {
	return f.errorMsg
}

// Duration returns how long the repair attempt took.
func (f *FileFix) Duration() time.Duration {
	return f.duration
}

// CreatedAt returns the creation timestamp.
func (f *FileFix) CreatedAt() time.Time {
	return f.createdAt
}

// UpdatedAt returns the last update timestamp.
func (f *FileFix) UpdatedAt() time.Time {
	return f.updatedAt
}

// MarkPatched records that heuristic passes produced a candidate rewrite.
func (f *FileFix) MarkPatched(passes []string) error {
	if err := f.transition(valueobject.FixStatusPatched); err != nil {
		return err
	}
	f.passes = passes
	f.changed = len(passes) > 0
	return nil
}

// MarkValidated records that the candidate rewrite parsed successfully and
// was committed. Files whose passes were all no-ops stay unmodified.
func (f *FileFix) MarkValidated() error {
	if f.status == valueobject.FixStatusUnmodified && !f.changed {
		// No-op pipeline on well-formed input: nothing to validate.
		return nil
	}
	return f.transition(valueobject.FixStatusValidatedOK)
}

// MarkRejected records a validation failure; the caller restores the original
// content before calling this.
func (f *FileFix) MarkRejected(reason string) error {
	if err := f.transition(valueobject.FixStatusRejected); err != nil {
		return err
	}
	kind := "still_invalid"
	f.errorKind = &kind
	f.errorMsg = &reason
	return nil
}

// MarkFailed records a non-validation failure (missing file, I/O error).
func (f *FileFix) MarkFailed(kind, message string) error {
	if err := f.transition(valueobject.FixStatusFailed); err != nil {
		return err
	}
	f.errorKind = &kind
	f.errorMsg = &message
	return nil
}

// SetDuration records the total time spent on this file.
func (f *FileFix) SetDuration(d time.Duration) {
	f.duration = d
	f.updatedAt = time.Now()
}

func (f *FileFix) transition(target valueobject.FixStatus) error {
	if !f.status.CanTransitionTo(target) {
		return fmt.Errorf("invalid fix status transition from %s to %s", f.status, target)
	}
	f.status = target
	f.updatedAt = time.Now()
	return nil
}
