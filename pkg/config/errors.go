package config

import "errors"

var (
	// ErrNoSourcesEnabled indicates that no source is enabled.
	ErrNoSourcesEnabled = errors.New("no sources enabled")
	// ErrUnknownLogLevel indicates an unknown logging level.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidTargetPrice indicates an unparsable or negative target price.
	ErrInvalidTargetPrice = errors.New("invalid target price")
	// ErrInvalidInterval indicates a non-positive monitor interval.
	ErrInvalidInterval = errors.New("invalid monitor interval")
)
