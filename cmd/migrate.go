package cmd

import (
	"fmt"

	"autofix/internal/adapter/outbound/provision"
	"autofix/internal/adapter/outbound/repository"
	"autofix/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates and returns the migrate command.
func newMigrateCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create or update the database schema used for run persistence.

The database URL is resolved in order from DATABASE_URL, the discrete PG*
environment variables, and the configured database settings. Each candidate
is verified with a connection before it is used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "write-env", "", "Write the resolved DATABASE_URL to this env file (first write wins)")
	return cmd
}

func runMigrate(cmd *cobra.Command, envFile string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	databaseURL, err := provision.NewProvisioner(cfg.Database).Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve database URL: %w", err)
	}

	pool, err := repository.NewDatabaseConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slogger.Info(ctx, "Migrations applied", slogger.Field("database_url", provision.MaskURL(databaseURL)))

	if envFile != "" {
		written, err := provision.PersistEnvFile(envFile, databaseURL)
		if err != nil {
			return fmt.Errorf("write env file: %w", err)
		}
		if written {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", envFile)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left untouched\n", envFile)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "migrations complete")
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newMigrateCmd())
}
