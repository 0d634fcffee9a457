// Package version provides information about the build version of the binaries.
package version

import "runtime"

// BuildInfo holds version information about the build.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'signalkit/internal/core/version.version=v0.1.0'
	// -X 'signalkit/internal/core/version.commit=abcd' -X 'signalkit/internal/core/version.date=2026-10-18'"
	return BuildInfo{
		Service:   "signalkit",
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
}

// String renders a one line summary for CLI output
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ", " + b.GoVersion + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
