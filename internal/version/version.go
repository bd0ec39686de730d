// Package version reports the pgstructure release and build metadata.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App returns the release version of pgstructure
func App() string {
	return strings.TrimSpace(versionFile)
}

// Platform returns the OS/architecture combination
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String formats the full version line, e.g. "0.1.0@abc123 linux/amd64 2026-01-01".
func String() string {
	return App() + "@" + GitCommit + " " + Platform() + " " + BuildDate
}
