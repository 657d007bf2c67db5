package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
search:
  source_timeout: 20s

monitor:
  interval: 15m
  target_price: "21000000"
  alert_on_initial: true
  event_buffer: 8

sources:
  - name: alibaba
    enabled: true
    config:
      timeout: 10000
  - name: ataair
    enabled: false
  - name: mrbilit
    enabled: true

metrics:
  enabled: true

logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Search.SourceTimeout.ToDuration(); got != 20*time.Second {
		t.Errorf("Expected 20s source timeout, got %s", got)
	}
	if got := cfg.Monitor.Interval.ToDuration(); got != 15*time.Minute {
		t.Errorf("Expected 15m interval, got %s", got)
	}
	if !cfg.Monitor.AlertOnInitial {
		t.Error("Expected alert_on_initial to be set")
	}
	if cfg.Monitor.EventBuffer != 8 {
		t.Errorf("Expected event buffer 8, got %d", cfg.Monitor.EventBuffer)
	}

	enabled := cfg.EnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled sources, got %d", len(enabled))
	}
	if enabled[0].Name != "alibaba" || enabled[1].Name != "mrbilit" {
		t.Errorf("Unexpected enabled sources: %s, %s", enabled[0].Name, enabled[1].Name)
	}
	if got := enabled[0].GetInt("timeout", 0); got != 10000 {
		t.Errorf("Expected source timeout 10000, got %d", got)
	}

	// Metrics enabled without an addr gets the default.
	if cfg.Metrics.Addr != ":9091" {
		t.Errorf("Expected default metrics addr, got %s", cfg.Metrics.Addr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging config: %+v", cfg.Logging)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if !cfg.TargetPrice().Equal(decimal.NewFromInt(21000000)) {
		t.Errorf("Expected target price 21000000, got %s", cfg.TargetPrice())
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SKYSNIPER_API_URL", "https://proxy.example.com/api")

	path := writeConfig(t, `
sources:
  - name: alibaba
    enabled: true
    config:
      api_url: ${SKYSNIPER_API_URL}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Sources[0].GetString("api_url", ""); got != "https://proxy.example.com/api" {
		t.Errorf("Expected expanded api_url, got %s", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
monitor:
  interval: soon
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected an error for an unparsable duration")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Default configuration must validate: %v", err)
	}
	if len(cfg.EnabledSources()) != 3 {
		t.Errorf("Expected all 3 sources enabled, got %d", len(cfg.EnabledSources()))
	}
	if got := cfg.Monitor.Interval.ToDuration(); got != 30*time.Minute {
		t.Errorf("Expected 30m default interval, got %s", got)
	}
	if got := cfg.Search.SourceTimeout.ToDuration(); got != 30*time.Second {
		t.Errorf("Expected 30s default source timeout, got %s", got)
	}
	if !cfg.TargetPrice().IsZero() {
		t.Errorf("Expected no default target price, got %s", cfg.TargetPrice())
	}
	if !cfg.Monitor.AlertOnInitial {
		t.Error("Expected the default config to alert on the first price")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no sources enabled",
			mutate:  func(c *Config) { c.Sources = nil },
			wantErr: ErrNoSourcesEnabled,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: ErrUnknownLogLevel,
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Monitor.Interval = Duration(-time.Minute) },
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "unparsable target price",
			mutate:  func(c *Config) { c.Monitor.TargetPrice = "cheap" },
			wantErr: ErrInvalidTargetPrice,
		},
		{
			name:    "negative target price",
			mutate:  func(c *Config) { c.Monitor.TargetPrice = "-1" },
			wantErr: ErrInvalidTargetPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
