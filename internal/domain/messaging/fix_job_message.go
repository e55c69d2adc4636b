// Package messaging defines the message shapes exchanged over the job queue.
package messaging

import (
	"time"

	"github.com/google/uuid"
)

// FixJobMessage is the payload published for an asynchronous repair job and
// consumed by the worker. One message corresponds to one full repair pass
// over a directory tree.
type FixJobMessage struct {
	MessageID string    `json:"message_id"`
	RootPath  string    `json:"root_path"`
	MaxDepth  int       `json:"max_depth"`
	DryRun    bool      `json:"dry_run"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFixJobMessage creates a FixJobMessage with a fresh message ID.
func NewFixJobMessage(rootPath string, maxDepth int, dryRun bool) FixJobMessage {
	return FixJobMessage{
		MessageID: uuid.New().String(),
		RootPath:  rootPath,
		MaxDepth:  maxDepth,
		DryRun:    dryRun,
		Timestamp: time.Now(),
	}
}
