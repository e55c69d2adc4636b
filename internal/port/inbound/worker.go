package inbound

import (
	"context"
	"time"

	"autofix/internal/domain/messaging"
)

// JobProcessor processes repair jobs delivered by the message consumer.
type JobProcessor interface {
	ProcessJob(ctx context.Context, msg messaging.FixJobMessage) error
}

// Consumer consumes repair job messages from the queue.
type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() ConsumerHealthStatus
}

// ConsumerHealthStatus reports consumer liveness and throughput.
type ConsumerHealthStatus struct {
	Subject         string    `json:"subject"`
	QueueGroup      string    `json:"queue_group"`
	IsRunning       bool      `json:"is_running"`
	IsConnected     bool      `json:"is_connected"`
	MessagesHandled int64     `json:"messages_handled"`
	ErrorCount      int64     `json:"error_count"`
	LastError       string    `json:"last_error,omitempty"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// FixerService is the inbound surface for running repair passes directly,
// without going through the queue.
type FixerService interface {
	// FixDirectory runs the full pipeline over root and returns the run
	// report. It never returns an error for individual file failures; those
	// are recorded in the run.
	FixDirectory(ctx context.Context, root string, maxDepth int, dryRun bool) (*RunReport, error)

	// ScanDirectory discovers and validates without patching anything.
	ScanDirectory(ctx context.Context, root string, maxDepth int) (*ScanReport, error)
}

// ScanReport summarizes a validate-only pass.
type ScanReport struct {
	RootPath     string           `json:"root_path"`
	FilesScanned int              `json:"files_scanned"`
	FilesInvalid int              `json:"files_invalid"`
	Files        []ScanFileReport `json:"files"`
}

// ScanFileReport is one file's validation outcome.
type ScanFileReport struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message,omitempty"`
}

// RunReport summarizes one repair pass for callers.
type RunReport struct {
	RunID       string        `json:"run_id"`
	RootPath    string        `json:"root_path"`
	FilesFound  int           `json:"files_found"`
	FilesFixed  int           `json:"files_fixed"`
	FilesFailed int           `json:"files_failed"`
	Duration    time.Duration `json:"duration"`
	Files       []FileReport  `json:"files"`
}

// FileReport summarizes one file's outcome.
type FileReport struct {
	Path      string   `json:"path"`
	Status    string   `json:"status"`
	Passes    []string `json:"passes,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
	Error     string   `json:"error,omitempty"`
}
