// Package version holds build version information.
package version

// Version is the current skysniper version. Overridden at build time via
// -ldflags "-X github.com/iPurya/SkySniper/pkg/version.Version=...".
var Version = "0.2.0-dev"
