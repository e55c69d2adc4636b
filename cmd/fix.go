package cmd

import (
	"fmt"
	"io"
	"strings"

	"autofix/internal/application/common/slogger"
	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/inbound"

	"github.com/spf13/cobra"
)

// newFixCmd creates and returns the fix command.
func newFixCmd() *cobra.Command {
	var (
		maxDepth int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "fix <path>",
		Short: "Repair Python files under a directory",
		Long: `Discover Python files under the given directory, apply the repair
passes to any file that fails to parse, and commit each rewrite only after it
validates. The original content of every rewritten file is kept in a one-time
backup next to it.

When a database is configured, the run and its per-file outcomes are recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args[0], maxDepth, dryRun)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "Maximum directory depth below the root (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate rewrites without writing anything to disk")
	return cmd
}

func runFix(cmd *cobra.Command, root string, maxDepth int, dryRun bool) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if maxDepth < 0 {
		maxDepth = cfg.Fixer.MaxDepth
	}
	dryRun = dryRun || cfg.Fixer.DryRun

	pool, fixRepo, err := openRunRepository(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	fixer, err := buildFixerService(cfg, fixRepo)
	if err != nil {
		return err
	}

	report, err := fixer.FixDirectory(ctx, root, maxDepth, dryRun)
	if err != nil {
		slogger.ErrorWithError(ctx, err, "Repair run failed", slogger.Field("root_path", root))
		return err
	}

	printRunReport(cmd.OutOrStdout(), report, dryRun)

	// Lenient exit: discovering any file at all counts as success, even if
	// every repair was rejected.
	if report.FilesFound == 0 {
		return fmt.Errorf("%w under %s", domainerrors.ErrNoFiles, root)
	}
	return nil
}

func printRunReport(w io.Writer, report *inbound.RunReport, dryRun bool) {
	for _, file := range report.Files {
		switch file.Status {
		case "validated_ok":
			fmt.Fprintf(w, "fixed      %s (%s)\n", file.Path, joinOrDash(file.Passes))
		case "rejected":
			fmt.Fprintf(w, "rejected   %s: %s\n", file.Path, file.Error)
		case "failed":
			fmt.Fprintf(w, "failed     %s: %s\n", file.Path, file.Error)
		default:
			fmt.Fprintf(w, "ok         %s\n", file.Path)
		}
	}
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "\n%d files found, %d fixed, %d failed%s\n",
		report.FilesFound, report.FilesFixed, report.FilesFailed, mode)
}

func joinOrDash(passes []string) string {
	if len(passes) == 0 {
		return "-"
	}
	return strings.Join(passes, ", ")
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newFixCmd())
}
