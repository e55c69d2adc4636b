package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"autofix/internal/adapter/inbound/messaging"
	outboundmessaging "autofix/internal/adapter/outbound/messaging"
	"autofix/internal/application/common/slogger"
	"autofix/internal/application/worker"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const workerShutdownTimeout = 10 * time.Second

// newWorkerCmd creates and returns the worker command.
func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Start the background repair worker",
		Long: `Start the background worker that consumes repair jobs from NATS
JetStream and runs the repair pipeline for each one.

The worker:
- Joins a queue group so multiple workers share the job stream
- Acknowledges a job only after its repair run completes
- Records runs in PostgreSQL when a database is configured
- Shuts down cleanly on SIGINT or SIGTERM`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(parent context.Context) error {
	cfg := GetConfig()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slogger.Info(ctx, "Starting worker service", slogger.Fields2(
		"queue_group", cfg.Worker.QueueGroup, "nats_url", cfg.NATS.URL))

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
	processor := worker.NewDefaultJobProcessor(cfg.Worker, fixer)

	consumer, err := messaging.NewNATSConsumer(messaging.ConsumerConfig{
		Subject:       outboundmessaging.JobSubject,
		QueueGroup:    cfg.Worker.QueueGroup,
		DurableName:   "autofix-workers",
		AckWait:       cfg.Worker.JobTimeout,
		MaxDeliver:    3,
		MaxAckPending: 1,
	}, cfg.NATS, processor)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.InfoNoCtx("Shutting down worker service", nil)

		stopCtx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		defer cancel()
		return consumer.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	processed, failed := processor.Stats()
	slogger.InfoNoCtx("Worker service stopped", slogger.Fields2(
		"jobs_processed", processed, "jobs_failed", failed))
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration.
	rootCmd.AddCommand(newWorkerCmd())
}
