package repository

import (
	"context"
	"time"

	"autofix/internal/domain/entity"
	"autofix/internal/domain/valueobject"
	"autofix/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLFixRunRepository implements the FixRunRepository interface.
type PostgreSQLFixRunRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLFixRunRepository creates a new PostgreSQL fix run repository.
func NewPostgreSQLFixRunRepository(pool *pgxpool.Pool) *PostgreSQLFixRunRepository {
	return &PostgreSQLFixRunRepository{pool: pool}
}

var _ outbound.FixRunRepository = (*PostgreSQLFixRunRepository)(nil)

// SaveRun inserts a fix run.
func (r *PostgreSQLFixRunRepository) SaveRun(ctx context.Context, run *entity.FixRun) error {
	if run == nil {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO autofix.fix_runs (
			id, root_path, max_depth, dry_run, started_at, completed_at,
			files_found, files_fixed, files_failed, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.pool.Exec(ctx, query,
		run.ID(),
		run.RootPath(),
		run.MaxDepth(),
		run.DryRun(),
		run.StartedAt(),
		run.CompletedAt(),
		run.FilesFound(),
		run.FilesFixed(),
		run.FilesFailed(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return WrapError(err, "save fix run")
	}

	return nil
}

// UpdateRun updates a fix run's counts and completion time.
func (r *PostgreSQLFixRunRepository) UpdateRun(ctx context.Context, run *entity.FixRun) error {
	if run == nil {
		return ErrInvalidArgument
	}

	query := `
		UPDATE autofix.fix_runs
		SET completed_at = $2, files_found = $3, files_fixed = $4,
		    files_failed = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		run.ID(),
		run.CompletedAt(),
		run.FilesFound(),
		run.FilesFixed(),
		run.FilesFailed(),
		run.UpdatedAt(),
	)
	if err != nil {
		return WrapError(err, "update fix run")
	}
	if tag.RowsAffected() == 0 {
		return WrapError(ErrNotFound, "update fix run")
	}

	return nil
}

// SaveFileFix inserts a per-file outcome.
func (r *PostgreSQLFixRunRepository) SaveFileFix(ctx context.Context, fix *entity.FileFix) error {
	if fix == nil {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO autofix.file_fixes (
			id, run_id, path, status, passes, changed,
			error_kind, error_message, duration_ms, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.pool.Exec(ctx, query,
		fix.ID(),
		fix.RunID(),
		fix.Path(),
		fix.Status().String(),
		fix.Passes(),
		fix.Changed(),
		fix.ErrorKind(),
		fix.ErrorMessage(),
		fix.Duration().Milliseconds(),
		fix.CreatedAt(),
		fix.UpdatedAt(),
	)
	if err != nil {
		return WrapError(err, "save file fix")
	}

	return nil
}

// FindRunByID finds a fix run by its ID. Returns nil when no run exists.
func (r *PostgreSQLFixRunRepository) FindRunByID(ctx context.Context, id uuid.UUID) (*entity.FixRun, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidArgument
	}

	query := `
		SELECT id, root_path, max_depth, dry_run, started_at, completed_at,
		       files_found, files_fixed, files_failed, created_at, updated_at
		FROM autofix.fix_runs
		WHERE id = $1`

	return r.scanRun(r.pool.QueryRow(ctx, query, id), "find fix run by ID")
}

// FindLatestRun returns the most recently started run, or nil when the store
// is empty.
func (r *PostgreSQLFixRunRepository) FindLatestRun(ctx context.Context) (*entity.FixRun, error) {
	query := `
		SELECT id, root_path, max_depth, dry_run, started_at, completed_at,
		       files_found, files_fixed, files_failed, created_at, updated_at
		FROM autofix.fix_runs
		ORDER BY started_at DESC
		LIMIT 1`

	return r.scanRun(r.pool.QueryRow(ctx, query), "find latest fix run")
}

// FindFileFixesByRunID returns all per-file outcomes of a run, ordered by path.
func (r *PostgreSQLFixRunRepository) FindFileFixesByRunID(
	ctx context.Context,
	runID uuid.UUID,
) ([]*entity.FileFix, error) {
	if runID == uuid.Nil {
		return nil, ErrInvalidArgument
	}

	query := `
		SELECT id, run_id, path, status, passes, changed,
		       error_kind, error_message, duration_ms, created_at, updated_at
		FROM autofix.file_fixes
		WHERE run_id = $1
		ORDER BY path`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, WrapError(err, "find file fixes by run ID")
	}
	defer rows.Close()

	var fixes []*entity.FileFix
	for rows.Next() {
		var (
			id, rowRunID        uuid.UUID
			path, statusStr     string
			passes              []string
			changed             bool
			errorKind, errorMsg *string
			durationMS          int64
			createdAt, updated  time.Time
		)
		if err := rows.Scan(
			&id, &rowRunID, &path, &statusStr, &passes, &changed,
			&errorKind, &errorMsg, &durationMS, &createdAt, &updated,
		); err != nil {
			return nil, WrapError(err, "scan file fix")
		}

		status, err := valueobject.NewFixStatus(statusStr)
		if err != nil {
			return nil, WrapError(err, "scan file fix")
		}

		fixes = append(fixes, entity.RestoreFileFix(
			id, rowRunID, path, status, passes, changed,
			errorKind, errorMsg,
			time.Duration(durationMS)*time.Millisecond,
			createdAt, updated,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "find file fixes by run ID")
	}

	return fixes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgreSQLFixRunRepository) scanRun(row rowScanner, operation string) (*entity.FixRun, error) {
	var (
		id                                  uuid.UUID
		rootPath                            string
		maxDepth                            int
		dryRun                              bool
		startedAt, createdAt, updatedAt     time.Time
		completedAt                         *time.Time
		filesFound, filesFixed, filesFailed int
	)

	err := row.Scan(
		&id, &rootPath, &maxDepth, &dryRun, &startedAt, &completedAt,
		&filesFound, &filesFixed, &filesFailed, &createdAt, &updatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, WrapError(err, operation)
	}

	return entity.RestoreFixRun(
		id, rootPath, maxDepth, dryRun, startedAt, completedAt,
		filesFound, filesFixed, filesFailed, createdAt, updatedAt,
	), nil
}
