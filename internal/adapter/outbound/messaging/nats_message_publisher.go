// Package messaging provides the NATS JetStream implementation of the
// repair-job publisher.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"autofix/internal/config"
	"autofix/internal/domain/messaging"
	"autofix/internal/port/outbound"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName holds repair job messages.
	StreamName = "AUTOFIX"
	// JobSubject is the subject fix jobs are published to.
	JobSubject = "autofix.job"

	natsConnectionTimeoutSeconds = 5
	streamMaxAgeHours            = 24
)

// NATSMessagePublisher provides a NATS JetStream implementation of
// MessagePublisher.
type NATSMessagePublisher struct {
	config config.NATSConfig
	conn   *nats.Conn
	js     nats.JetStreamContext

	mutex          sync.RWMutex
	isTestMode     bool
	isConnected    bool
	connectedAt    time.Time
	reconnectCount int
	lastError      error
}

// NewNATSMessagePublisher creates a new NATS message publisher.
func NewNATSMessagePublisher(cfg config.NATSConfig) (*NATSMessagePublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}

	return &NATSMessagePublisher{config: cfg}, nil
}

var _ outbound.MessagePublisher = (*NATSMessagePublisher)(nil)

// Connect establishes the connection to the NATS server. Test mode skips the
// network entirely so unit tests need no running server.
func (n *NATSMessagePublisher) Connect() error {
	if n.config.TestMode {
		n.mutex.Lock()
		n.isTestMode = true
		n.isConnected = true
		n.connectedAt = time.Now()
		n.mutex.Unlock()
		return nil
	}

	opts := []nats.Option{
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.mutex.Lock()
			n.reconnectCount++
			n.mutex.Unlock()
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, _ error) {
			n.setConnected(false, errors.New("connection lost"))
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.setConnected(false, err)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		n.setConnected(false, err)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.isConnected = true
	n.connectedAt = time.Now()
	n.mutex.Unlock()
	return nil
}

// Disconnect closes the NATS connection.
func (n *NATSMessagePublisher) Disconnect() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.isConnected = false
	return nil
}

// EnsureStream creates the fix-job stream if it doesn't exist. Workqueue
// retention: each job is delivered to exactly one worker.
func (n *NATSMessagePublisher) EnsureStream() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.isTestMode {
		if !n.isConnected {
			return errors.New("not connected to NATS server")
		}
		return nil
	}

	if n.js == nil {
		return errors.New("not connected to NATS server")
	}

	streamConfig := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"autofix.>"},
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		MaxAge:    streamMaxAgeHours * time.Hour,
		Replicas:  1,
	}

	if _, err := n.js.AddStream(streamConfig); err != nil {
		// Creation races with another instance are fine.
		if _, infoErr := n.js.StreamInfo(StreamName); infoErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// PublishFixJob publishes a fix job message to the job subject.
func (n *NATSMessagePublisher) PublishFixJob(ctx context.Context, msg messaging.FixJobMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if msg.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}
	if msg.RootPath == "" {
		return errors.New("root path cannot be empty")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	n.mutex.RLock()
	isTestMode := n.isTestMode
	isConnected := n.isConnected
	js := n.js
	n.mutex.RUnlock()

	if isTestMode {
		if !isConnected {
			return errors.New("not connected in test mode")
		}
		return nil
	}

	if js == nil {
		return errors.New("not connected to NATS server")
	}

	if _, err := js.Publish(JobSubject, data, nats.Context(ctx)); err != nil {
		n.setConnected(isConnected, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// GetConnectionHealth returns the current connection health status.
func (n *NATSMessagePublisher) GetConnectionHealth() outbound.MessagePublisherHealthStatus {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	status := outbound.MessagePublisherHealthStatus{
		Connected:  n.isConnected,
		Reconnects: n.reconnectCount,
		Uptime:     "0s",
	}
	if n.isConnected {
		status.Uptime = time.Since(n.connectedAt).String()
	}
	if n.lastError != nil {
		status.LastError = n.lastError.Error()
	}
	return status
}

func (n *NATSMessagePublisher) setConnected(connected bool, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.isConnected = connected
	if err != nil {
		n.lastError = err
	}
}
