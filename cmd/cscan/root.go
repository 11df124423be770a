package main

import (
	"os"

	"github.com/spf13/cobra"

	"cscan/internal/config"
	"cscan/internal/logging"
	"cscan/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cscan",
	Short: "cscan - C header surface scanner",
	Long: `cscan analyzes C source and header files and produces a structured
inventory of their public surface: function signatures, type definitions and
preprocessor macros, as input for foreign-language binding generators.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cscan version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
}

// newLogger builds a logger from CLI flags, env, and config.
// Precedence: CLI flag > CSCAN_LOG_LEVEL env var > config > info/human.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logLevelFlag
	if level == "" {
		level = os.Getenv("CSCAN_LOG_LEVEL")
	}
	if level == "" && cfg != nil {
		level = cfg.Logging.Level
	}

	format := logFormatFlag
	if format == "" && cfg != nil {
		format = cfg.Logging.Format
	}
	f := logging.HumanFormat
	if format == "json" {
		f = logging.JSONFormat
	}

	return logging.NewLogger(logging.Config{
		Format: f,
		Level:  logging.ParseLevel(level),
	})
}

// loadConfig loads the project config, falling back to defaults with a
// warning instead of refusing to run.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return config.DefaultConfig()
	}
	return cfg
}
