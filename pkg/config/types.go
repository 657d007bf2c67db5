package config

import "time"

// Config is the root configuration structure
type Config struct {
	Search  SearchConfig   `yaml:"search"`
	Monitor MonitorConfig  `yaml:"monitor"`
	Sources []SourceConfig `yaml:"sources"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Logging LoggingConfig  `yaml:"logging"`
}

// SearchConfig configures one-shot searches and the aggregator
type SearchConfig struct {
	// SourceTimeout bounds each individual source fetch
	SourceTimeout Duration `yaml:"source_timeout"`
}

// MonitorConfig configures monitor mode
type MonitorConfig struct {
	Interval       Duration `yaml:"interval"`        // time between checks
	TargetPrice    string   `yaml:"target_price"`    // alert at/below this fare, IRR; empty disables
	AlertOnInitial bool     `yaml:"alert_on_initial"` // emit an alert for the first observed price
	EventBuffer    int      `yaml:"event_buffer"`
}

// SourceConfig configures one booking source
type SourceConfig struct {
	Name    string                 `yaml:"name"`
	Enabled bool                   `yaml:"enabled"`
	Config  map[string]interface{} `yaml:"config"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
