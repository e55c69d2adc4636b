package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"autofix/internal/adapter/outbound/export"
	"autofix/internal/domain/entity"
	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/inbound"
	"autofix/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newExportCmd creates and returns the export command.
func newExportCmd() *cobra.Command {
	var (
		runID      string
		format     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a persisted repair run",
		Long: `Load a repair run and its per-file outcomes from the database and
write them as JSON, CSV, or YAML. Without --run the most recent run is
exported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, runID, format, outputPath)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to export (default: latest run)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json, csv, yaml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func runExport(cmd *cobra.Command, runID, formatName, outputPath string) error {
	ctx := cmd.Context()

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	pool, fixRepo, err := openRunRepository(ctx, GetConfig())
	if err != nil {
		return err
	}
	if fixRepo == nil {
		return errors.New("no database configured: set DATABASE_URL or the database config")
	}
	defer pool.Close()

	report, err := loadRunReport(ctx, fixRepo, runID)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return export.NewReportExporter().Export(out, report, format)
}

// loadRunReport fetches the run and its file outcomes and flattens them into
// the report shape shared with direct runs.
func loadRunReport(ctx context.Context, fixRepo outbound.FixRunRepository, runID string) (*inbound.RunReport, error) {
	var (
		run *entity.FixRun
		err error
	)
	if runID == "" {
		run, err = fixRepo.FindLatestRun(ctx)
	} else {
		var id uuid.UUID
		id, err = uuid.Parse(runID)
		if err != nil {
			return nil, fmt.Errorf("invalid run ID %q: %w", runID, err)
		}
		run, err = fixRepo.FindRunByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domainerrors.ErrRunNotFound
	}

	fixes, err := fixRepo.FindFileFixesByRunID(ctx, run.ID())
	if err != nil {
		return nil, err
	}

	report := &inbound.RunReport{
		RunID:       run.ID().String(),
		RootPath:    run.RootPath(),
		FilesFound:  run.FilesFound(),
		FilesFixed:  run.FilesFixed(),
		FilesFailed: run.FilesFailed(),
	}
	if completed := run.CompletedAt(); completed != nil {
		report.Duration = completed.Sub(run.StartedAt())
	}
	for _, fix := range fixes {
		file := inbound.FileReport{
			Path:   fix.Path(),
			Status: fix.Status().String(),
			Passes: fix.Passes(),
		}
		if kind := fix.ErrorKind(); kind != nil {
			file.ErrorKind = *kind
		}
		if msg := fix.ErrorMessage(); msg != nil {
			file.Error = *msg
		}
		report.Files = append(report.Files, file)
	}
	return report, nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newExportCmd())
}
