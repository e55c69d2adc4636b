package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newScanCmd creates and returns the scan command.
func newScanCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Validate Python files without repairing anything",
		Long: `Discover Python files under the given directory and report which of
them fail to parse. Nothing is written to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], maxDepth)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "Maximum directory depth below the root (default from config)")
	return cmd
}

func runScan(cmd *cobra.Command, root string, maxDepth int) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if maxDepth < 0 {
		maxDepth = cfg.Fixer.MaxDepth
	}

	fixer, err := buildFixerService(cfg, nil)
	if err != nil {
		return err
	}

	report, err := fixer.ScanDirectory(ctx, root, maxDepth)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, file := range report.Files {
		if file.Valid {
			fmt.Fprintf(out, "ok       %s\n", file.Path)
		} else {
			fmt.Fprintf(out, "invalid  %s:%d: %s\n", file.Path, file.Line, file.Message)
		}
	}
	fmt.Fprintf(out, "\n%d files scanned, %d invalid\n", report.FilesScanned, report.FilesInvalid)
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newScanCmd())
}
