package outbound

import (
	"context"

	"autofix/internal/domain/entity"

	"github.com/google/uuid"
)

// FixRunRepository persists fix runs and their per-file outcomes.
type FixRunRepository interface {
	SaveRun(ctx context.Context, run *entity.FixRun) error
	UpdateRun(ctx context.Context, run *entity.FixRun) error
	SaveFileFix(ctx context.Context, fix *entity.FileFix) error
	FindRunByID(ctx context.Context, id uuid.UUID) (*entity.FixRun, error)
	FindLatestRun(ctx context.Context) (*entity.FixRun, error)
	FindFileFixesByRunID(ctx context.Context, runID uuid.UUID) ([]*entity.FileFix, error)
}
