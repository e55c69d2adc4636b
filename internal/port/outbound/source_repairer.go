package outbound

import "context"

// SourceRepairer applies one speculative rewrite pass to file content.
// Implementations are pure text transforms; correctness is established only
// by the SyntaxValidator downstream.
type SourceRepairer interface {
	// Name identifies the pass in reports and logs.
	Name() string
	// Repair returns the rewritten content and whether anything changed.
	Repair(ctx context.Context, content string) (string, bool)
}

// ValidationResult carries the outcome of a grammar-aware parse.
type ValidationResult struct {
	Valid   bool
	Line    int // 1-based line of the first error, 0 when valid
	Column  int // 0-based column of the first error
	Message string
}

// SyntaxValidator parses candidate text with a real grammar. This is the
// only correctness gate in the pipeline: all upstream passes are speculative
// until a parse succeeds.
type SyntaxValidator interface {
	Validate(ctx context.Context, source string) (ValidationResult, error)
}

// BackupStore persists one-time sibling backups of files about to be
// rewritten.
type BackupStore interface {
	// EnsureBackup writes content to the backup path for file unless a backup
	// already exists. It returns the backup path and whether a new backup was
	// written.
	EnsureBackup(path string, content []byte) (string, bool, error)
}
