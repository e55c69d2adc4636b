package cmd

import (
	"fmt"
	"path/filepath"

	"autofix/internal/adapter/outbound/messaging"
	"autofix/internal/application/common/slogger"
	domainmessaging "autofix/internal/domain/messaging"

	"github.com/spf13/cobra"
)

// newSubmitCmd creates and returns the submit command.
func newSubmitCmd() *cobra.Command {
	var (
		maxDepth int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Queue a repair job for the worker service",
		Long: `Publish a repair job to NATS JetStream instead of running the pipeline
in-process. A running worker picks the job up and executes it with its own
configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args[0], maxDepth, dryRun)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "Maximum directory depth below the root (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask the worker to validate without writing")
	return cmd
}

func runSubmit(cmd *cobra.Command, root string, maxDepth int, dryRun bool) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if maxDepth < 0 {
		maxDepth = cfg.Fixer.MaxDepth
	}

	// The worker resolves paths on its own host; submit absolute paths so the
	// job is unambiguous.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}

	publisher, err := messaging.NewNATSMessagePublisher(cfg.NATS)
	if err != nil {
		return err
	}
	if err := publisher.Connect(); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() {
		if err := publisher.Disconnect(); err != nil {
			slogger.ErrorWithError(ctx, err, "Failed to disconnect from NATS", nil)
		}
	}()

	if err := publisher.EnsureStream(); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	msg := domainmessaging.NewFixJobMessage(absRoot, maxDepth, dryRun)
	if err := publisher.PublishFixJob(ctx, msg); err != nil {
		return fmt.Errorf("publish job: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "queued job %s for %s\n", msg.MessageID, absRoot)
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newSubmitCmd())
}
