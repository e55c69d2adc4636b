// Package metrics provides OpenTelemetry metrics collection for the repair
// pipeline: counters for file outcomes and histograms for per-file timing.
package metrics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Metric names following OpenTelemetry semantic conventions.
const (
	FilesProcessedCounterName  = "repair_files_processed_total"
	FilesFixedCounterName      = "repair_files_fixed_total"
	FilesFailedCounterName     = "repair_files_failed_total"
	FilesRestoredCounterName   = "repair_files_restored_total"
	FileDurationHistogramName  = "repair_file_duration_seconds"
	RunDurationHistogramName   = "repair_run_duration_seconds"
	BackupsCreatedCounterName  = "repair_backups_created_total"
	PassApplicationCounterName = "repair_pass_applications_total"
)

// Common attribute keys for consistent labeling.
const (
	AttrStatus    = "status"
	AttrErrorKind = "error_kind"
	AttrPassName  = "pass_name"
	AttrDryRun    = "dry_run"
)

// fileDurationBuckets covers the expected per-file latency range: regex passes
// are sub-millisecond, a tree-sitter parse of a large file tops out well under
// a second.
func fileDurationBuckets() []float64 {
	return []float64{
		0.0005, // 0.5ms
		0.001,  // 1ms
		0.005,  // 5ms
		0.01,   // 10ms
		0.05,   // 50ms
		0.1,    // 100ms
		0.5,    // 500ms
		1.0,    // 1s
	}
}

// runDurationBuckets covers whole-run latencies across a directory tree.
func runDurationBuckets() []float64 {
	return []float64{
		0.01, // 10ms
		0.1,  // 100ms
		0.5,  // 500ms
		1.0,  // 1s
		5.0,  // 5s
		10.0, // 10s
		30.0, // 30s
		60.0, // 1min
	}
}

// PipelineMetrics defines the interface for repair pipeline observability.
type PipelineMetrics interface {
	// RecordFileProcessed records a file reaching a terminal status.
	RecordFileProcessed(ctx context.Context, status string, duration time.Duration)

	// RecordFileFixed records a file that was modified and validated.
	RecordFileFixed(ctx context.Context, passes []string)

	// RecordFileFailed records a file whose repair failed, labeled by error kind.
	RecordFileFailed(ctx context.Context, errorKind string)

	// RecordFileRestored records an original restored after a rejected patch.
	RecordFileRestored(ctx context.Context)

	// RecordBackupCreated records a sidecar backup write.
	RecordBackupCreated(ctx context.Context)

	// RecordRunDuration records the wall time of a whole directory run.
	RecordRunDuration(ctx context.Context, duration time.Duration, dryRun bool)
}

// PipelineMetricsConfig holds configuration for pipeline metrics collection.
type PipelineMetricsConfig struct {
	ServiceName    string
	ServiceVersion string
}

// DefaultPipelineMetrics implements PipelineMetrics using OpenTelemetry.
type DefaultPipelineMetrics struct {
	processedCounter metric.Int64Counter
	fixedCounter     metric.Int64Counter
	failedCounter    metric.Int64Counter
	restoredCounter  metric.Int64Counter
	backupsCounter   metric.Int64Counter
	passCounter      metric.Int64Counter
	fileDuration     metric.Float64Histogram
	runDuration      metric.Float64Histogram
}

// NewPipelineMetrics creates a PipelineMetrics instance backed by a manual-reader
// meter provider. Suitable for embedding in the CLI where no exporter runs.
func NewPipelineMetrics(config PipelineMetricsConfig) (PipelineMetrics, error) {
	if config.ServiceName == "" {
		return nil, errors.New("service name cannot be empty")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", config.ServiceName),
			attribute.String("service.version", config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)

	return NewPipelineMetricsWithProvider(provider)
}

// NewPipelineMetricsWithProvider creates a PipelineMetrics instance with a
// custom meter provider.
func NewPipelineMetricsWithProvider(provider metric.MeterProvider) (PipelineMetrics, error) {
	meter := provider.Meter("autofix/pipeline")

	processedCounter, err := meter.Int64Counter(FilesProcessedCounterName,
		metric.WithDescription("Total number of files processed"),
	)
	if err != nil {
		return nil, err
	}

	fixedCounter, err := meter.Int64Counter(FilesFixedCounterName,
		metric.WithDescription("Total number of files modified and validated"),
	)
	if err != nil {
		return nil, err
	}

	failedCounter, err := meter.Int64Counter(FilesFailedCounterName,
		metric.WithDescription("Total number of files whose repair failed"),
	)
	if err != nil {
		return nil, err
	}

	restoredCounter, err := meter.Int64Counter(FilesRestoredCounterName,
		metric.WithDescription("Total number of originals restored after a rejected patch"),
	)
	if err != nil {
		return nil, err
	}

	backupsCounter, err := meter.Int64Counter(BackupsCreatedCounterName,
		metric.WithDescription("Total number of sidecar backups created"),
	)
	if err != nil {
		return nil, err
	}

	passCounter, err := meter.Int64Counter(PassApplicationCounterName,
		metric.WithDescription("Total number of repair pass applications that changed content"),
	)
	if err != nil {
		return nil, err
	}

	fileDuration, err := meter.Float64Histogram(FileDurationHistogramName,
		metric.WithDescription("Per-file repair duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileDurationBuckets()...),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(RunDurationHistogramName,
		metric.WithDescription("Whole-run repair duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(runDurationBuckets()...),
	)
	if err != nil {
		return nil, err
	}

	return &DefaultPipelineMetrics{
		processedCounter: processedCounter,
		fixedCounter:     fixedCounter,
		failedCounter:    failedCounter,
		restoredCounter:  restoredCounter,
		backupsCounter:   backupsCounter,
		passCounter:      passCounter,
		fileDuration:     fileDuration,
		runDuration:      runDuration,
	}, nil
}

func (m *DefaultPipelineMetrics) RecordFileProcessed(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrStatus, status))
	m.processedCounter.Add(ctx, 1, attrs)
	m.fileDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *DefaultPipelineMetrics) RecordFileFixed(ctx context.Context, passes []string) {
	m.fixedCounter.Add(ctx, 1)
	for _, pass := range passes {
		m.passCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrPassName, pass)))
	}
}

func (m *DefaultPipelineMetrics) RecordFileFailed(ctx context.Context, errorKind string) {
	m.failedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrErrorKind, errorKind)))
}

func (m *DefaultPipelineMetrics) RecordFileRestored(ctx context.Context) {
	m.restoredCounter.Add(ctx, 1)
}

func (m *DefaultPipelineMetrics) RecordBackupCreated(ctx context.Context) {
	m.backupsCounter.Add(ctx, 1)
}

func (m *DefaultPipelineMetrics) RecordRunDuration(ctx context.Context, duration time.Duration, dryRun bool) {
	m.runDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool(AttrDryRun, dryRun)),
	)
}

// NoopPipelineMetrics is a PipelineMetrics that records nothing. Used when
// metrics collection is disabled.
type NoopPipelineMetrics struct{}

func (NoopPipelineMetrics) RecordFileProcessed(context.Context, string, time.Duration) {}
func (NoopPipelineMetrics) RecordFileFixed(context.Context, []string)                  {}
func (NoopPipelineMetrics) RecordFileFailed(context.Context, string)                   {}
func (NoopPipelineMetrics) RecordFileRestored(context.Context)                         {}
func (NoopPipelineMetrics) RecordBackupCreated(context.Context)                        {}
func (NoopPipelineMetrics) RecordRunDuration(context.Context, time.Duration, bool)     {}
