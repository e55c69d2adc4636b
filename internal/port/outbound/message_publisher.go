package outbound

import (
	"context"

	"autofix/internal/domain/messaging"
)

// MessagePublisher publishes repair jobs to the message queue.
type MessagePublisher interface {
	Connect() error
	Disconnect() error
	// EnsureStream creates the JetStream stream if it doesn't exist.
	EnsureStream() error
	PublishFixJob(ctx context.Context, msg messaging.FixJobMessage) error
}

// MessagePublisherHealthStatus reports publisher connection health.
type MessagePublisherHealthStatus struct {
	Connected  bool   `json:"connected"`
	Uptime     string `json:"uptime"`
	Reconnects int    `json:"reconnects"`
	LastError  string `json:"last_error,omitempty"`
}
