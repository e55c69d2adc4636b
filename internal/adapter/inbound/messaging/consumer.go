// Package messaging provides the NATS JetStream consumer that feeds repair
// jobs to the worker's job processor.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"autofix/internal/application/common/slogger"
	"autofix/internal/config"
	"autofix/internal/domain/messaging"
	"autofix/internal/port/inbound"

	"github.com/nats-io/nats.go"
)

const defaultJobProcessingTimeout = 30 * time.Minute

// ConsumerConfig holds the queue subscription configuration.
type ConsumerConfig struct {
	Subject       string
	QueueGroup    string
	DurableName   string
	AckWait       time.Duration
	MaxDeliver    int
	MaxAckPending int
}

// NATSConsumer consumes fix job messages from JetStream and hands them to
// the job processor. Messages are acked only after successful processing.
type NATSConsumer struct {
	config       ConsumerConfig
	natsConfig   config.NATSConfig
	jobProcessor inbound.JobProcessor

	mu      sync.RWMutex
	running bool
	conn    *nats.Conn
	sub     *nats.Subscription
	health  inbound.ConsumerHealthStatus
}

// NewNATSConsumer creates a new NATS consumer with validation.
func NewNATSConsumer(
	consumerConfig ConsumerConfig,
	natsConfig config.NATSConfig,
	processor inbound.JobProcessor,
) (*NATSConsumer, error) {
	if err := validateConsumerConfig(consumerConfig); err != nil {
		return nil, fmt.Errorf("invalid consumer configuration: %w", err)
	}
	if processor == nil {
		return nil, errors.New("job processor cannot be nil")
	}

	return &NATSConsumer{
		config:       consumerConfig,
		natsConfig:   natsConfig,
		jobProcessor: processor,
		health: inbound.ConsumerHealthStatus{
			Subject:    consumerConfig.Subject,
			QueueGroup: consumerConfig.QueueGroup,
		},
	}, nil
}

var _ inbound.Consumer = (*NATSConsumer)(nil)

func validateConsumerConfig(config ConsumerConfig) error {
	if config.Subject == "" {
		return errors.New("subject cannot be empty")
	}
	if config.QueueGroup == "" {
		return errors.New("queue group cannot be empty")
	}
	if config.AckWait <= 0 {
		return errors.New("ack wait duration must be positive")
	}
	if config.MaxDeliver <= 0 {
		return errors.New("max deliver count must be positive")
	}
	if config.MaxAckPending <= 0 {
		return errors.New("max ack pending must be positive")
	}
	return nil
}

// Start subscribes to the job subject. In test mode no connection is made;
// messages are delivered through HandleMessage directly.
func (n *NATSConsumer) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return fmt.Errorf("consumer already running for subject %s", n.config.Subject)
	}

	if n.natsConfig.TestMode {
		n.running = true
		n.health.IsRunning = true
		n.health.IsConnected = true
		return nil
	}

	conn, err := nats.Connect(n.natsConfig.URL,
		nats.MaxReconnects(n.natsConfig.MaxReconnects),
		nats.ReconnectWait(n.natsConfig.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	sub, err := js.QueueSubscribe(
		n.config.Subject,
		n.config.QueueGroup,
		func(msg *nats.Msg) {
			if handleErr := n.HandleMessage(ctx, msg.Data); handleErr != nil {
				slogger.ErrorWithError(ctx, handleErr, "Fix job processing failed", slogger.Fields{
					"subject": n.config.Subject,
				})
				if nakErr := msg.Nak(); nakErr != nil {
					slogger.ErrorWithError(ctx, nakErr, "Failed to nak message", nil)
				}
				return
			}
			if ackErr := msg.Ack(); ackErr != nil {
				slogger.ErrorWithError(ctx, ackErr, "Failed to ack message", nil)
			}
		},
		nats.Durable(n.config.DurableName),
		nats.ManualAck(),
		nats.AckWait(n.config.AckWait),
		nats.MaxDeliver(n.config.MaxDeliver),
		nats.MaxAckPending(n.config.MaxAckPending),
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", n.config.Subject, err)
	}

	n.conn = conn
	n.sub = sub
	n.running = true
	n.health.IsRunning = true
	n.health.IsConnected = true
	return nil
}

// Stop drains the subscription and closes the connection. Idempotent.
func (n *NATSConsumer) Stop(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.running {
		return nil
	}

	if n.sub != nil {
		if err := n.sub.Drain(); err != nil {
			slogger.ErrorWithErrorNoCtx(err, "Failed to drain subscription", nil)
		}
		n.sub = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}

	n.running = false
	n.health.IsRunning = false
	n.health.IsConnected = false
	return nil
}

// Health returns the current health status of the consumer.
func (n *NATSConsumer) Health() inbound.ConsumerHealthStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.health
}

// HandleMessage deserializes and processes one raw message payload. Exposed
// so tests and the test-mode path can drive the consumer without a broker.
func (n *NATSConsumer) HandleMessage(ctx context.Context, data []byte) error {
	var jobMessage messaging.FixJobMessage
	if err := json.Unmarshal(data, &jobMessage); err != nil {
		n.recordOutcome(false, fmt.Sprintf("failed to unmarshal message: %v", err))
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if err := validateJobMessage(jobMessage); err != nil {
		n.recordOutcome(false, fmt.Sprintf("invalid message: %v", err))
		return fmt.Errorf("message validation failed: %w", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, defaultJobProcessingTimeout)
	defer cancel()

	if err := n.jobProcessor.ProcessJob(jobCtx, jobMessage); err != nil {
		n.recordOutcome(false, fmt.Sprintf("job processing failed: %v", err))
		return fmt.Errorf("job processing failed: %w", err)
	}

	n.recordOutcome(true, "")
	return nil
}

func validateJobMessage(msg messaging.FixJobMessage) error {
	if msg.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}
	if msg.RootPath == "" {
		return errors.New("root path cannot be empty")
	}
	if msg.MaxDepth < 0 {
		return errors.New("max depth cannot be negative")
	}
	return nil
}

func (n *NATSConsumer) recordOutcome(success bool, errorMsg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if success {
		n.health.MessagesHandled++
		n.health.LastMessageTime = time.Now()
		return
	}
	n.health.ErrorCount++
	n.health.LastError = errorMsg
}
