package entity

import (
	"time"

	"autofix/internal/domain/valueobject"

	"github.com/google/uuid"
)

// FixRun represents one repair pass over a directory tree. It aggregates the
// per-file outcomes and carries the lenient exit policy: a run is considered
// successful when at least one file was fixed or any file was discovered at
// all.
type FixRun struct {
	id          uuid.UUID
	rootPath    string
	maxDepth    int
	dryRun      bool
	startedAt   time.Time
	completedAt *time.Time
	filesFound  int
	filesFixed  int
	filesFailed int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewFixRun creates a new FixRun entity for the given root directory.
func NewFixRun(rootPath string, maxDepth int, dryRun bool) *FixRun {
	now := time.Now()
	return &FixRun{
		id:        uuid.New(),
		rootPath:  rootPath,
		maxDepth:  maxDepth,
		dryRun:    dryRun,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreFixRun creates a FixRun entity from stored data.
func RestoreFixRun(
	id uuid.UUID,
	rootPath string,
	maxDepth int,
	dryRun bool,
	startedAt time.Time,
	completedAt *time.Time,
	filesFound int,
	filesFixed int,
	filesFailed int,
	createdAt time.Time,
	updatedAt time.Time,
) *FixRun {
	return &FixRun{
		id:          id,
		rootPath:    rootPath,
		maxDepth:    maxDepth,
		dryRun:      dryRun,
		startedAt:   startedAt,
		completedAt: completedAt,
		filesFound:  filesFound,
		filesFixed:  filesFixed,
		filesFailed: filesFailed,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the run ID.
func (r *FixRun) ID() uuid.UUID {
	return r.id
}

// RootPath returns the directory the run was started against.
func (r *FixRun) RootPath() string {
	return r.rootPath
}

// MaxDepth returns the discovery depth bound for this run.
func (r *FixRun) MaxDepth() int {
	return r.maxDepth
}

// DryRun reports whether the run validated without rewriting files.
func (r *FixRun) DryRun() bool {
	return r.dryRun
}

// StartedAt returns the run start timestamp.
func (r *FixRun) StartedAt() time.Time {
	return r.startedAt
}

// CompletedAt returns the run completion timestamp, nil while running.
func (r *FixRun) CompletedAt() *time.Time {
	return r.completedAt
}

// FilesFound returns the number of candidate files discovered.
func (r *FixRun) FilesFound() int {
	return r.filesFound
}

// FilesFixed returns the number of files successfully rewritten.
func (r *FixRun) FilesFixed() int {
	return r.filesFixed
}

// FilesFailed returns the number of files that failed or were rejected.
func (r *FixRun) FilesFailed() int {
	return r.filesFailed
}

// CreatedAt returns the creation timestamp.
func (r *FixRun) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last update timestamp.
func (r *FixRun) UpdatedAt() time.Time {
	return r.updatedAt
}

// RecordOutcome folds one per-file outcome into the run counters.
func (r *FixRun) RecordOutcome(fix *FileFix) {
	r.filesFound++
	switch fix.Status() {
	case valueobject.FixStatusValidatedOK:
		if fix.Changed() {
			r.filesFixed++
		}
	case valueobject.FixStatusRejected, valueobject.FixStatusFailed:
		r.filesFailed++
	}
	r.updatedAt = time.Now()
}

// Complete marks the run finished.
func (r *FixRun) Complete() {
	now := time.Now()
	r.completedAt = &now
	r.updatedAt = now
}

// Succeeded reports the lenient exit policy: true when at least one file was
// fixed or any file was found at all.
func (r *FixRun) Succeeded() bool {
	return r.filesFixed > 0 || r.filesFound > 0
}
