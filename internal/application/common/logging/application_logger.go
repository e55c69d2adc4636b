// Package logging provides the structured application logger. The logger is
// an explicit, injectable handle rather than ambient process-global state;
// the slogger package offers a thin facade for call sites that have no handle
// wired through yet.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// ApplicationLogger defines the interface for structured application logging.
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Config represents logger configuration.
type Config struct {
	Level  string
	Format string // json, text
	Output string // stdout, stderr, buffer (for testing)
}

// LogEntry represents the structure of emitted log entries.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Component     string                 `json:"component,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

func parseLevel(s string) (level, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return levelInfo, nil
	case "DEBUG":
		return levelDebug, nil
	case "WARN", "WARNING":
		return levelWarn, nil
	case "ERROR":
		return levelError, nil
	default:
		return levelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

type applicationLoggerImpl struct {
	config    Config
	minLevel  level
	component string
	buffer    *bytes.Buffer
	logger    *log.Logger
}

// NewApplicationLogger creates a new application logger.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	minLevel, err := parseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	if config.Format != "" && config.Format != "json" && config.Format != "text" {
		return nil, errors.New("invalid log format: " + config.Format)
	}

	l := &applicationLoggerImpl{
		config:   config,
		minLevel: minLevel,
	}

	switch config.Output {
	case "buffer":
		l.buffer = &bytes.Buffer{}
		l.logger = log.New(l.buffer, "", 0)
	case "stderr":
		l.logger = log.New(os.Stderr, "", 0)
	case "stdout":
		fallthrough
	default:
		l.logger = log.New(os.Stdout, "", 0)
	}

	return l, nil
}

// Buffer returns the captured output when Output is "buffer", for tests.
func Buffer(logger ApplicationLogger) string {
	if impl, ok := logger.(*applicationLoggerImpl); ok && impl.buffer != nil {
		return impl.buffer.String()
	}
	return ""
}

func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	l.emit(ctx, levelDebug, message, "", fields)
}

func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	l.emit(ctx, levelInfo, message, "", fields)
}

func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	l.emit(ctx, levelWarn, message, "", fields)
}

func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	l.emit(ctx, levelError, message, "", fields)
}

func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	l.emit(ctx, levelError, message, errMsg, fields)
}

// WithComponent returns a logger that stamps every entry with component.
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	clone := *l
	clone.component = component
	return &clone
}

func (l *applicationLoggerImpl) emit(ctx context.Context, lv level, message, errMsg string, fields Fields) {
	if lv < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:         levelNames[lv],
		Message:       message,
		CorrelationID: CorrelationIDFromContext(ctx),
		Component:     l.component,
		Error:         errMsg,
	}
	if len(fields) > 0 {
		entry.Metadata = fields
	}

	if l.config.Format == "text" {
		l.logger.Print(formatText(entry))
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Metadata contained something unmarshalable; drop it rather than the entry.
		entry.Metadata = map[string]interface{}{"logging_error": err.Error()}
		data, _ = json.Marshal(entry)
	}
	l.logger.Print(string(data))
}

func formatText(entry LogEntry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp)
	b.WriteString(" ")
	b.WriteString(entry.Level)
	if entry.Component != "" {
		b.WriteString(" [")
		b.WriteString(entry.Component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(entry.Message)
	if entry.Error != "" {
		b.WriteString(" error=")
		b.WriteString(entry.Error)
	}
	if entry.CorrelationID != "" {
		b.WriteString(" correlation_id=")
		b.WriteString(entry.CorrelationID)
	}

	keys := make([]string, 0, len(entry.Metadata))
	for k := range entry.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Metadata[k])
	}
	return b.String()
}
