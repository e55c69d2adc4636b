package cmd

import (
	"autofix/internal/version"

	"github.com/spf13/cobra"
)

// Version information variables set via ldflags during build. Kept for build
// systems that inject into the cmd package instead of internal/version.
//
//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	Version   string
	Commit    string
	BuildTime string
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if Version != "" || Commit != "" || BuildTime != "" {
				version.SetBuildVars(Version, Commit, BuildTime)
			}
			return version.Get().Write(cmd.OutOrStdout(), short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newVersionCmd())
}
