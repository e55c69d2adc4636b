// Package cmd provides the command-line interface for the autofix application.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"autofix/internal/application/common/logging"
	"autofix/internal/application/common/slogger"
	"autofix/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "autofix",
	Short: "A speculative repair tool for broken Python sources",
	Long: `Autofix discovers Python files under a directory, rewrites common
mechanical syntax damage, and commits a rewrite only when the result parses.

The tool supports:
- Recursive file discovery with a configurable depth bound
- Bracket balancing and string-literal normalization passes
- Parse validation with tree-sitter before anything touches disk
- One-time backups next to every file it rewrites
- Optional run persistence in PostgreSQL and queued jobs via NATS JetStream`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the loaded configuration. It is only valid after cobra
// has run initConfig.
func GetConfig() *config.Config {
	return cfg
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern.
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-format flag: %v\n", err)
	}
}

func initConfig() {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTOFIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; use defaults and environment.
	}

	cfg = config.New(v)
}

func initLogging() {
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		return
	}
	slogger.SetGlobalLogger(logger)
}

func setDefaults(v *viper.Viper) {
	// Fixer defaults
	v.SetDefault("fixer.max_depth", 2)
	v.SetDefault("fixer.file_suffix", ".py")
	v.SetDefault("fixer.excluded_dirs", []string{"venv", ".venv", "env", ".env", ".git", "__pycache__", "node_modules"})
	v.SetDefault("fixer.backup_suffix", ".bak")
	v.SetDefault("fixer.max_source_size", 1048576)
	v.SetDefault("fixer.dry_run", false)

	// Worker defaults
	v.SetDefault("worker.queue_group", "fixers")
	v.SetDefault("worker.job_timeout", "30m")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "autofix")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
