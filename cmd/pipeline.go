package cmd

import (
	"context"
	"errors"
	"fmt"

	"autofix/internal/adapter/outbound/discovery"
	"autofix/internal/adapter/outbound/provision"
	"autofix/internal/adapter/outbound/repair"
	"autofix/internal/adapter/outbound/repository"
	"autofix/internal/adapter/outbound/treesitter"
	"autofix/internal/application/common/metrics"
	"autofix/internal/application/common/slogger"
	"autofix/internal/application/service"
	"autofix/internal/config"
	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/outbound"
	"autofix/internal/version"

	"github.com/jackc/pgx/v5/pgxpool"
)

// buildFixerService assembles the repair pipeline from configuration. fixRepo
// may be nil for runs that should not be persisted.
func buildFixerService(cfg *config.Config, fixRepo outbound.FixRunRepository) (*service.FixService, error) {
	validator, err := treesitter.NewPythonValidator()
	if err != nil {
		return nil, fmt.Errorf("create syntax validator: %w", err)
	}

	pipelineMetrics, err := metrics.NewPipelineMetrics(metrics.PipelineMetricsConfig{
		ServiceName:    "autofix",
		ServiceVersion: version.Get().Version,
	})
	if err != nil {
		slogger.WarnNoCtx("Metrics unavailable, continuing without instrumentation",
			slogger.Field("error", err.Error()))
		pipelineMetrics = nil
	}

	repairers := []outbound.SourceRepairer{
		repair.NewBracketBalancer(),
		repair.NewStringNormalizer(),
	}

	return service.NewFixService(
		discovery.NewWalker(cfg.Fixer.FileSuffix, cfg.Fixer.ExcludedDirs),
		repairers,
		validator,
		repair.NewFileBackupStore(cfg.Fixer.BackupSuffix),
		fixRepo,
		pipelineMetrics,
		cfg.Fixer,
	), nil
}

// openRunRepository resolves a database URL through the provisioning chain
// and opens a pooled connection. A nil repository with a nil error means no
// database is configured and persistence should be skipped.
func openRunRepository(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, outbound.FixRunRepository, error) {
	databaseURL, err := provision.NewProvisioner(cfg.Database).Resolve(ctx)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNoDatabaseURL) {
			slogger.Debug(ctx, "No database configured, run persistence disabled", nil)
			return nil, nil, nil
		}
		return nil, nil, err
	}

	pool, err := repository.NewDatabaseConnection(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, repository.NewPostgreSQLFixRunRepository(pool), nil
}
