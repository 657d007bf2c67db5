// Package aggregator fans one search out to all configured booking
// sources concurrently and merges their listings into a single ranked
// result.
package aggregator

import "errors"

var (
	// ErrAllSourcesFailed indicates that every requested source failed.
	ErrAllSourcesFailed = errors.New("all sources failed")
	// ErrNoSources indicates that no sources were configured or requested.
	ErrNoSources = errors.New("no sources to search")
)
