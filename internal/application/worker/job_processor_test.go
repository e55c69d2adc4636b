package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"autofix/internal/config"
	"autofix/internal/domain/messaging"
	"autofix/internal/port/inbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFixer struct {
	mu       sync.Mutex
	calls    []string
	err      error
	blockFor time.Duration
}

func (f *fakeFixer) FixDirectory(ctx context.Context, root string, _ int, _ bool) (*inbound.RunReport, error) {
	f.mu.Lock()
	f.calls = append(f.calls, root)
	f.mu.Unlock()
	if f.blockFor > 0 {
		select {
		case <-time.After(f.blockFor):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &inbound.RunReport{RunID: "run-1", RootPath: root, FilesFound: 2, FilesFixed: 1}, nil
}

func (f *fakeFixer) ScanDirectory(_ context.Context, root string, _ int) (*inbound.ScanReport, error) {
	return &inbound.ScanReport{RootPath: root}, nil
}

func (f *fakeFixer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func validMessage() messaging.FixJobMessage {
	return messaging.FixJobMessage{
		MessageID: "msg-1",
		RootPath:  "/srv/code",
		MaxDepth:  2,
		Timestamp: time.Now(),
	}
}

func TestProcessJob_Success(t *testing.T) {
	fixer := &fakeFixer{}
	p := NewDefaultJobProcessor(config.WorkerConfig{}, fixer)

	require.NoError(t, p.ProcessJob(context.Background(), validMessage()))

	assert.Equal(t, 1, fixer.callCount())
	processed, failed := p.Stats()
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(0), failed)
	assert.Equal(t, 0, p.ActiveJobCount())
}

func TestProcessJob_RejectsInvalidMessages(t *testing.T) {
	p := NewDefaultJobProcessor(config.WorkerConfig{}, &fakeFixer{})

	missingID := validMessage()
	missingID.MessageID = ""
	require.Error(t, p.ProcessJob(context.Background(), missingID))

	missingRoot := validMessage()
	missingRoot.RootPath = ""
	require.Error(t, p.ProcessJob(context.Background(), missingRoot))
}

func TestProcessJob_SurfacesFixerFailure(t *testing.T) {
	fixer := &fakeFixer{err: errors.New("discovery failed")}
	p := NewDefaultJobProcessor(config.WorkerConfig{}, fixer)

	err := p.ProcessJob(context.Background(), validMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery failed")

	processed, failed := p.Stats()
	assert.Equal(t, int64(0), processed)
	assert.Equal(t, int64(1), failed)
}

func TestProcessJob_TimeoutCancelsFixer(t *testing.T) {
	fixer := &fakeFixer{blockFor: time.Second}
	p := NewDefaultJobProcessor(config.WorkerConfig{JobTimeout: 10 * time.Millisecond}, fixer)

	err := p.ProcessJob(context.Background(), validMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessJob_SkipsDuplicateInFlight(t *testing.T) {
	fixer := &fakeFixer{blockFor: 100 * time.Millisecond}
	p := NewDefaultJobProcessor(config.WorkerConfig{}, fixer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = p.ProcessJob(context.Background(), validMessage())
	}()

	// Wait for the first job to register as running.
	require.Eventually(t, func() bool {
		return p.ActiveJobCount() == 1
	}, time.Second, time.Millisecond)

	// The duplicate is acknowledged without invoking the fixer again.
	require.NoError(t, p.ProcessJob(context.Background(), validMessage()))
	assert.Equal(t, 1, fixer.callCount())

	wg.Wait()
}
