package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewPipelineMetrics_RequiresServiceName(t *testing.T) {
	_, err := NewPipelineMetrics(PipelineMetricsConfig{})
	assert.Error(t, err)
}

func TestNewPipelineMetrics(t *testing.T) {
	m, err := NewPipelineMetrics(PipelineMetricsConfig{ServiceName: "autofix", ServiceVersion: "test"})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestPipelineMetrics_RecordsThroughProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewPipelineMetricsWithProvider(provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFileProcessed(ctx, "validated_ok", 30*time.Millisecond)
	m.RecordFileFixed(ctx, []string{"bracket_balance", "string_normalize"})
	m.RecordFileFailed(ctx, "still_invalid")
	m.RecordFileRestored(ctx)
	m.RecordBackupCreated(ctx)
	m.RecordRunDuration(ctx, 2*time.Second, false)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics[0].Metrics {
		names[sm.Name] = true
	}
	for _, expected := range []string{
		FilesProcessedCounterName,
		FilesFixedCounterName,
		FilesFailedCounterName,
		FilesRestoredCounterName,
		BackupsCreatedCounterName,
		PassApplicationCounterName,
		FileDurationHistogramName,
		RunDurationHistogramName,
	} {
		assert.True(t, names[expected], "missing metric %s", expected)
	}
}

func TestNoopPipelineMetrics(t *testing.T) {
	var m PipelineMetrics = NoopPipelineMetrics{}

	// No panics, no state.
	ctx := context.Background()
	m.RecordFileProcessed(ctx, "failed", time.Second)
	m.RecordFileFixed(ctx, nil)
	m.RecordFileFailed(ctx, "unknown")
	m.RecordFileRestored(ctx)
	m.RecordBackupCreated(ctx)
	m.RecordRunDuration(ctx, time.Second, true)
}
