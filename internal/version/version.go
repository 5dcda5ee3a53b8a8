// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/geolocator/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies outbound provider calls.
func UserAgent() string {
	return "geolocator/" + Version
}

// String is the one-line build summary printed at startup.
func String() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, commit, Date)
}
