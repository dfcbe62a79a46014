// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/shoprec/internal/version.Version=...
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for logs and CLI output.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
