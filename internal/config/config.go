package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Fixer    FixerConfig    `mapstructure:"fixer"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Log      LogConfig      `mapstructure:"log"`
}

// FixerConfig holds repair pipeline configuration.
type FixerConfig struct {
	MaxDepth      int      `mapstructure:"max_depth"`
	FileSuffix    string   `mapstructure:"file_suffix"`
	ExcludedDirs  []string `mapstructure:"excluded_dirs"`
	BackupSuffix  string   `mapstructure:"backup_suffix"`
	MaxSourceSize int64    `mapstructure:"max_source_size"`
	DryRun        bool     `mapstructure:"dry_run"`
}

// WorkerConfig holds worker configuration.
type WorkerConfig struct {
	QueueGroup string        `mapstructure:"queue_group"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
}

// DSN returns the database connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the database connection string in URL form, as constructed by
// the provisioning chain from discrete PG* variables.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	TestMode      bool          `mapstructure:"test_mode"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) *Config {
	var config Config

	// Unmarshal configuration
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return &config
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Fixer.MaxDepth < 0 {
		return errors.New("fixer.max_depth cannot be negative")
	}

	if c.Fixer.FileSuffix == "" {
		return errors.New("fixer.file_suffix is required")
	}

	if c.Fixer.BackupSuffix == "" {
		return errors.New("fixer.backup_suffix is required")
	}

	if c.Fixer.MaxSourceSize <= 0 {
		return errors.New("fixer.max_source_size must be positive")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return errors.New("database.port must be between 1 and 65535")
	}

	return nil
}
