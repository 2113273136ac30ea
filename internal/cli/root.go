package cli

import (
	"context"
	"os"

	"github.com/matzehuels/entitymap/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version and served
// by the health endpoint. It is typically called by the main package with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the entitymap CLI with logging to stderr and returns an error
// if any command fails.
//
// Logging:
//   - Default: info level
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and reachable from every
// command via loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
