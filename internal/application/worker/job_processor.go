package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"autofix/internal/application/common/slogger"
	"autofix/internal/config"
	"autofix/internal/domain/messaging"
	"autofix/internal/port/inbound"
)

const (
	jobStatusRunning   = "running"
	jobStatusCompleted = "completed"
	jobStatusFailed    = "failed"
)

// JobExecution tracks one in-flight repair job.
type JobExecution struct {
	MessageID string
	RootPath  string
	StartTime time.Time
	Status    string
}

// DefaultJobProcessor runs queued repair jobs against the fixer service.
type DefaultJobProcessor struct {
	config     config.WorkerConfig
	fixer      inbound.FixerService
	activeJobs map[string]*JobExecution
	jobsMu     sync.RWMutex

	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewDefaultJobProcessor creates a job processor backed by fixer.
func NewDefaultJobProcessor(cfg config.WorkerConfig, fixer inbound.FixerService) *DefaultJobProcessor {
	return &DefaultJobProcessor{
		config:     cfg,
		fixer:      fixer,
		activeJobs: make(map[string]*JobExecution),
	}
}

var _ inbound.JobProcessor = (*DefaultJobProcessor)(nil)

// ProcessJob runs the repair pipeline for one queued job. A nil error
// acknowledges the message; failures are returned so the consumer can
// redeliver.
func (p *DefaultJobProcessor) ProcessJob(ctx context.Context, msg messaging.FixJobMessage) error {
	if p.fixer == nil {
		return fmt.Errorf("job processor has no fixer service")
	}
	if msg.MessageID == "" {
		return fmt.Errorf("job message has no message ID")
	}
	if msg.RootPath == "" {
		return fmt.Errorf("job message has no root path")
	}

	if !p.beginJob(msg) {
		slogger.Info(ctx, "Skipping duplicate job already in flight", slogger.Fields2(
			"message_id", msg.MessageID, "root_path", msg.RootPath))
		return nil
	}

	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	slogger.Info(ctx, "Processing repair job", slogger.Fields3(
		"message_id", msg.MessageID, "root_path", msg.RootPath, "dry_run", msg.DryRun))

	report, err := p.fixer.FixDirectory(ctx, msg.RootPath, msg.MaxDepth, msg.DryRun)
	if err != nil {
		p.endJob(msg.MessageID, jobStatusFailed)
		p.jobsFailed.Add(1)
		slogger.ErrorWithError(ctx, err, "Repair job failed", slogger.Fields2(
			"message_id", msg.MessageID, "root_path", msg.RootPath))
		return fmt.Errorf("repair job %s: %w", msg.MessageID, err)
	}

	p.endJob(msg.MessageID, jobStatusCompleted)
	p.jobsProcessed.Add(1)
	slogger.Info(ctx, "Repair job completed", slogger.Fields{
		"message_id":   msg.MessageID,
		"run_id":       report.RunID,
		"files_found":  report.FilesFound,
		"files_fixed":  report.FilesFixed,
		"files_failed": report.FilesFailed,
	})
	return nil
}

// beginJob registers the job and reports false when the same message ID is
// already running.
func (p *DefaultJobProcessor) beginJob(msg messaging.FixJobMessage) bool {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	if existing, ok := p.activeJobs[msg.MessageID]; ok && existing.Status == jobStatusRunning {
		return false
	}
	p.activeJobs[msg.MessageID] = &JobExecution{
		MessageID: msg.MessageID,
		RootPath:  msg.RootPath,
		StartTime: time.Now(),
		Status:    jobStatusRunning,
	}
	return true
}

func (p *DefaultJobProcessor) endJob(messageID, status string) {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	if job, ok := p.activeJobs[messageID]; ok {
		job.Status = status
	}
}

// ActiveJobCount returns the number of jobs currently running.
func (p *DefaultJobProcessor) ActiveJobCount() int {
	p.jobsMu.RLock()
	defer p.jobsMu.RUnlock()
	count := 0
	for _, job := range p.activeJobs {
		if job.Status == jobStatusRunning {
			count++
		}
	}
	return count
}

// Stats returns cumulative processed and failed job counts.
func (p *DefaultJobProcessor) Stats() (processed, failed int64) {
	return p.jobsProcessed.Load(), p.jobsFailed.Load()
}
