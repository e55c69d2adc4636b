// Package service orchestrates the repair pipeline: discover candidate
// files, apply heuristic passes, gate every rewrite behind the syntax
// validator, and record run outcomes.
package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"autofix/internal/application/common/metrics"
	"autofix/internal/application/common/slogger"
	"autofix/internal/config"
	"autofix/internal/domain/entity"
	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/inbound"
	"autofix/internal/port/outbound"
)

// FixService runs the repair pipeline over a directory tree. Files are
// processed strictly one at a time: read, patched, validated, committed (or
// dropped) before the next file is opened.
type FixService struct {
	discoverer outbound.FileDiscoverer
	repairers  []outbound.SourceRepairer
	validator  outbound.SyntaxValidator
	backups    outbound.BackupStore
	repository outbound.FixRunRepository // nil disables persistence
	metrics    metrics.PipelineMetrics
	config     config.FixerConfig
}

// NewFixService creates a FixService. repository may be nil for runs that
// should not be persisted; pipelineMetrics may be nil to disable metrics.
func NewFixService(
	discoverer outbound.FileDiscoverer,
	repairers []outbound.SourceRepairer,
	validator outbound.SyntaxValidator,
	backups outbound.BackupStore,
	repository outbound.FixRunRepository,
	pipelineMetrics metrics.PipelineMetrics,
	cfg config.FixerConfig,
) *FixService {
	if pipelineMetrics == nil {
		pipelineMetrics = metrics.NoopPipelineMetrics{}
	}
	return &FixService{
		discoverer: discoverer,
		repairers:  repairers,
		validator:  validator,
		backups:    backups,
		repository: repository,
		metrics:    pipelineMetrics,
		config:     cfg,
	}
}

var _ inbound.FixerService = (*FixService)(nil)

// FixDirectory runs the full pipeline over root. Individual file failures
// never abort the run; they are recorded and processing continues.
func (s *FixService) FixDirectory(
	ctx context.Context,
	root string,
	maxDepth int,
	dryRun bool,
) (*inbound.RunReport, error) {
	start := time.Now()
	run := entity.NewFixRun(root, maxDepth, dryRun)

	ctx = slogger.EnsureCorrelationID(ctx)
	slogger.Info(ctx, "Starting fix run", slogger.Fields{
		"run_id":    run.ID().String(),
		"root":      root,
		"max_depth": maxDepth,
		"dry_run":   dryRun,
	})

	if s.repository != nil {
		if err := s.repository.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("saving fix run: %w", err)
		}
	}

	files, err := s.discoverer.DiscoverFiles(ctx, root, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	report := &inbound.RunReport{
		RunID:    run.ID().String(),
		RootPath: root,
		Files:    make([]inbound.FileReport, 0, len(files)),
	}

	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		fix := s.processFile(ctx, run, path, dryRun)
		run.RecordOutcome(fix)
		report.Files = append(report.Files, fileReport(fix))

		if s.repository != nil {
			if saveErr := s.repository.SaveFileFix(ctx, fix); saveErr != nil {
				slogger.ErrorWithError(ctx, saveErr, "Failed to persist file outcome", slogger.Fields{
					"path": path,
				})
			}
		}
	}

	run.Complete()
	if s.repository != nil {
		if err := s.repository.UpdateRun(ctx, run); err != nil {
			slogger.ErrorWithError(ctx, err, "Failed to update fix run", slogger.Fields{
				"run_id": run.ID().String(),
			})
		}
	}

	report.FilesFound = run.FilesFound()
	report.FilesFixed = run.FilesFixed()
	report.FilesFailed = run.FilesFailed()
	report.Duration = time.Since(start)
	s.metrics.RecordRunDuration(ctx, report.Duration, dryRun)

	slogger.Info(ctx, "Fix run completed", slogger.Fields{
		"run_id":       run.ID().String(),
		"files_found":  report.FilesFound,
		"files_fixed":  report.FilesFixed,
		"files_failed": report.FilesFailed,
		"duration":     report.Duration.String(),
	})
	return report, nil
}

// processFile takes one file through the per-file state machine. The
// returned FileFix is always in a final state.
func (s *FixService) processFile(
	ctx context.Context,
	run *entity.FixRun,
	path string,
	dryRun bool,
) *entity.FileFix {
	start := time.Now()
	fix := entity.NewFileFix(run.ID(), path)
	defer func() {
		fix.SetDuration(time.Since(start))
		s.metrics.RecordFileProcessed(ctx, fix.Status().String(), fix.Duration())
	}()

	original, err := s.readSource(path)
	if err != nil {
		kind := domainerrors.KindOf(err)
		if kind == "file_not_found" {
			slogger.Warn(ctx, "File vanished before processing", slogger.Fields{"path": path})
		} else {
			slogger.ErrorWithError(ctx, err, "Failed to read file", slogger.Fields{"path": path})
		}
		s.failFile(ctx, fix, kind, err.Error())
		return fix
	}

	// Well-formed input is a strict no-op: no passes, no backup, no write.
	result, err := s.validator.Validate(ctx, original)
	if err != nil {
		s.failFile(ctx, fix, "validator_error", err.Error())
		return fix
	}
	if result.Valid {
		slogger.Debug(ctx, "File already parses, skipping", slogger.Fields{"path": path})
		return fix
	}

	patched, passes := s.applyPasses(ctx, original)
	if markErr := fix.MarkPatched(passes); markErr != nil {
		s.failFile(ctx, fix, "unknown", markErr.Error())
		return fix
	}

	result, err = s.validator.Validate(ctx, patched)
	if err != nil {
		s.failFile(ctx, fix, "validator_error", err.Error())
		return fix
	}
	if !result.Valid {
		// The heuristics did not produce parseable text. Nothing was
		// written, so the on-disk content is untouched (the in-memory
		// restore).
		reason := result.Message
		if reason == "" {
			reason = "still invalid after repair passes"
		}
		if markErr := fix.MarkRejected(fmt.Sprintf("%s (line %d)", reason, result.Line)); markErr != nil {
			s.failFile(ctx, fix, "unknown", markErr.Error())
			return fix
		}
		s.metrics.RecordFileRestored(ctx)
		slogger.Warn(ctx, "Repair rejected by validator", slogger.Fields{
			"path":    path,
			"line":    result.Line,
			"message": reason,
		})
		return fix
	}

	if dryRun {
		if markErr := fix.MarkValidated(); markErr != nil {
			s.failFile(ctx, fix, "unknown", markErr.Error())
			return fix
		}
		s.metrics.RecordFileFixed(ctx, passes)
		slogger.Info(ctx, "Would fix file (dry run)", slogger.Fields{
			"path":   path,
			"passes": passes,
		})
		return fix
	}

	if err := s.commit(ctx, path, original, patched); err != nil {
		s.failFile(ctx, fix, domainerrors.KindOf(err), err.Error())
		return fix
	}

	if markErr := fix.MarkValidated(); markErr != nil {
		s.failFile(ctx, fix, "unknown", markErr.Error())
		return fix
	}
	s.metrics.RecordFileFixed(ctx, passes)
	slogger.Info(ctx, "Fixed file", slogger.Fields{
		"path":   path,
		"passes": passes,
	})
	return fix
}

// applyPasses runs each repair pass in order, feeding each pass's output to
// the next, and returns the final text plus the names of passes that
// changed it.
func (s *FixService) applyPasses(ctx context.Context, content string) (string, []string) {
	current := content
	var applied []string
	for _, repairer := range s.repairers {
		next, changed := repairer.Repair(ctx, current)
		if changed {
			applied = append(applied, repairer.Name())
			current = next
		}
	}
	return current, applied
}

// commit writes the validated rewrite, taking the one-time sidecar backup
// first. A failed write attempts restoration from the original content.
func (s *FixService) commit(ctx context.Context, path, original, patched string) error {
	backupPath, written, err := s.backups.EnsureBackup(path, []byte(original))
	if err != nil {
		return err
	}
	if written {
		s.metrics.RecordBackupCreated(ctx)
		slogger.Debug(ctx, "Backup written", slogger.Fields{"backup": backupPath})
	}

	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		// Put the original back so a partial write never survives.
		if restoreErr := os.WriteFile(path, []byte(original), 0o644); restoreErr != nil {
			slogger.ErrorWithError(ctx, restoreErr, "Failed to restore original after write failure", slogger.Fields{
				"path":   path,
				"backup": backupPath,
			})
		} else {
			s.metrics.RecordFileRestored(ctx)
		}
		return fmt.Errorf("%w: %s: %w", domainerrors.ErrWriteFailed, path, err)
	}
	return nil
}

func (s *FixService) readSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domainerrors.ErrFileNotFound, path)
		}
		return "", fmt.Errorf("%w: %s: %w", domainerrors.ErrReadFailed, path, err)
	}
	if s.config.MaxSourceSize > 0 && info.Size() > s.config.MaxSourceSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", domainerrors.ErrReadFailed, path, s.config.MaxSourceSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domainerrors.ErrReadFailed, path, err)
	}
	return string(data), nil
}

func (s *FixService) failFile(ctx context.Context, fix *entity.FileFix, kind, message string) {
	if err := fix.MarkFailed(kind, message); err != nil {
		slogger.ErrorWithErrorNoCtx(err, "Failed to mark file failed", slogger.Fields{
			"path": fix.Path(),
		})
	}
	s.metrics.RecordFileFailed(ctx, kind)
}

func fileReport(fix *entity.FileFix) inbound.FileReport {
	report := inbound.FileReport{
		Path:   fix.Path(),
		Status: fix.Status().String(),
		Passes: fix.Passes(),
	}
	if fix.ErrorKind() != nil {
		report.ErrorKind = *fix.ErrorKind()
	}
	if fix.ErrorMessage() != nil {
		report.Error = *fix.ErrorMessage()
	}
	return report
}

// ScanDirectory discovers and validates without patching anything.
func (s *FixService) ScanDirectory(
	ctx context.Context,
	root string,
	maxDepth int,
) (*inbound.ScanReport, error) {
	files, err := s.discoverer.DiscoverFiles(ctx, root, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	report := &inbound.ScanReport{
		RootPath: root,
		Files:    make([]inbound.ScanFileReport, 0, len(files)),
	}

	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		fileReport := inbound.ScanFileReport{Path: path}
		source, readErr := s.readSource(path)
		if readErr != nil {
			fileReport.Message = readErr.Error()
		} else {
			result, valErr := s.validator.Validate(ctx, source)
			if valErr != nil {
				fileReport.Message = valErr.Error()
			} else {
				fileReport.Valid = result.Valid
				fileReport.Line = result.Line
				fileReport.Column = result.Column
				fileReport.Message = result.Message
			}
		}

		report.FilesScanned++
		if !fileReport.Valid {
			report.FilesInvalid++
		}
		report.Files = append(report.Files, fileReport)
	}

	return report, nil
}
