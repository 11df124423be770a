// Package config loads scanner configuration from .cscan/config.json,
// falling back to defaults when no file exists.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"cscan/internal/errors"
)

// ConfigDir is the per-project directory holding config and cache.
const ConfigDir = ".cscan"

// Config represents the complete scanner configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// IncludePaths are directories searched when resolving #include
	// targets, in order. The input file's own directory is always
	// searched first and need not be listed.
	IncludePaths []string `json:"includePaths" mapstructure:"includePaths"`

	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig contains analysis behavior settings
type AnalysisConfig struct {
	// FollowIncludes analyzes headers reached via non-system includes.
	FollowIncludes bool `json:"followIncludes" mapstructure:"followIncludes"`
	// MaxFileSizeBytes skips files larger than this. Zero disables the
	// limit.
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	// Workers bounds concurrent file analysis.
	Workers int `json:"workers" mapstructure:"workers"`
}

// CacheConfig contains summary cache settings
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		IncludePaths: []string{"/usr/include", "/usr/local/include"},
		Analysis: AnalysisConfig{
			FollowIncludes:   true,
			MaxFileSizeBytes: 1000000,
			Workers:          4,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.cscan/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDir))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.cscan/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return invalidField("version", "unsupported config version")
	}
	if c.Analysis.Workers < 0 {
		return invalidField("analysis.workers", "must not be negative")
	}
	if c.Analysis.MaxFileSizeBytes < 0 {
		return invalidField("analysis.maxFileSizeBytes", "must not be negative")
	}
	return nil
}

func invalidField(field, message string) error {
	return errors.New(errors.ConfigInvalid, message, nil).
		WithDetails(map[string]interface{}{"field": field})
}
