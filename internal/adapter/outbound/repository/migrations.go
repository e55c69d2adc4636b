package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationStatements creates the schema and tables. Every statement is
// idempotent so the bootstrap can run on every deploy.
var migrationStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS autofix`,

	`CREATE TABLE IF NOT EXISTS autofix.fix_runs (
		id UUID PRIMARY KEY,
		root_path TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		dry_run BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		files_found INTEGER NOT NULL DEFAULT 0,
		files_fixed INTEGER NOT NULL DEFAULT 0,
		files_failed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS autofix.file_fixes (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES autofix.fix_runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		status TEXT NOT NULL CHECK (
			status IN ('unmodified', 'patched', 'validated_ok', 'rejected', 'failed')
		),
		passes TEXT[] NOT NULL DEFAULT '{}',
		changed BOOLEAN NOT NULL DEFAULT FALSE,
		error_kind TEXT,
		error_message TEXT,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_file_fixes_run_id ON autofix.file_fixes(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_file_fixes_status ON autofix.file_fixes(status)`,
	`CREATE INDEX IF NOT EXISTS idx_fix_runs_started_at ON autofix.fix_runs(started_at DESC)`,
}

// Migrate applies the schema bootstrap to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying migration: %w", WrapError(err, "migrate"))
		}
	}
	return nil
}
