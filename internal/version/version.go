// Package version provides build-time version information.
package version

// Set at build time with -ldflags.
var (
	// Version is the semantic version of the release.
	Version = "0.1.0"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"
)
