package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate checks a loaded configuration before anything runs.
func Validate(cfg *Config) error {
	if len(cfg.EnabledSources()) == 0 {
		return fmt.Errorf("%w", ErrNoSourcesEnabled)
	}

	if _, ok := logLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLogLevel, cfg.Logging.Level)
	}

	if cfg.Monitor.Interval.ToDuration() <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.Monitor.Interval.ToDuration())
	}

	if cfg.Monitor.TargetPrice != "" {
		target, err := decimal.NewFromString(cfg.Monitor.TargetPrice)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTargetPrice, cfg.Monitor.TargetPrice)
		}
		if target.IsNegative() {
			return fmt.Errorf("%w: must not be negative", ErrInvalidTargetPrice)
		}
	}

	return nil
}

// TargetPrice parses the configured target price. Returns zero when unset.
func (c *Config) TargetPrice() decimal.Decimal {
	if c.Monitor.TargetPrice == "" {
		return decimal.Zero
	}
	target, err := decimal.NewFromString(c.Monitor.TargetPrice)
	if err != nil {
		return decimal.Zero
	}
	return target
}
