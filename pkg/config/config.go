// Package config provides configuration loading and validation for skysniper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, expanding environment
// variables in the file body.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every source enabled and all
// defaults applied, for running without a config file.
func Default() *Config {
	cfg := &Config{
		Monitor: MonitorConfig{AlertOnInitial: true},
		Sources: []SourceConfig{
			{Name: "alibaba", Enabled: true},
			{Name: "ataair", Enabled: true},
			{Name: "mrbilit", Enabled: true},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Search.SourceTimeout.ToDuration() == 0 {
		cfg.Search.SourceTimeout = Duration(30 * time.Second)
	}

	if cfg.Monitor.Interval.ToDuration() == 0 {
		cfg.Monitor.Interval = Duration(30 * time.Minute)
	}
	if cfg.Monitor.EventBuffer == 0 {
		cfg.Monitor.EventBuffer = 16
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// EnabledSources returns the configs of all enabled sources.
func (c *Config) EnabledSources() []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Sources))
	for _, sc := range c.Sources {
		if sc.Enabled {
			enabled = append(enabled, sc)
		}
	}
	return enabled
}

// GetString retrieves a string value from the source configuration.
func (sc *SourceConfig) GetString(key, defaultValue string) string {
	if val, ok := sc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetInt retrieves an integer from source config.
func (sc *SourceConfig) GetInt(key string, defaultValue int) int {
	if val, ok := sc.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from source config.
func (sc *SourceConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := sc.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}
