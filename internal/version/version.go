// Package version holds build metadata injected via -ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X llmgateway/internal/version.Version=v1.0.0 -X llmgateway/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a one-line description of the build
func Info() string {
	return fmt.Sprintf("llmgateway %s (commit %s, built %s)", Version, Commit, Date)
}
