// cmd/scanlens/main.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/vulntor/scanlens/cmd/scanlens/commands"
	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

// main runs the scanlens CLI and maps failures to exit codes:
//   - 0: Success
//   - 1: General error (default)
//   - 2: Invalid usage/input (bad location, cursor or configuration)
//   - 4: Not found (scan folder, tool result or storage root)
//   - 7: Service unavailable (storage failure, server init failure)
func main() {
	command := commands.NewCommand()

	if err := command.Execute(); err != nil {
		if !commands.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(getExitCode(err))
	}
}

func getExitCode(err error) int {
	switch {
	case isServerError(err):
		return server.ExitCode(err)
	case storage.IsInvalidInput(err):
		return 2
	case storage.IsNotFound(err), errors.Is(err, service.ErrUnknownTool):
		return 4
	case errors.Is(err, service.ErrUpstream):
		return 7
	default:
		return 1
	}
}

// isServerError reports whether err carries a server error code.
func isServerError(err error) bool {
	var coded interface{ Code() string }
	return errors.As(err, &coded) ||
		errors.Is(err, server.ErrFeaturesDisabled) ||
		errors.Is(err, server.ErrConfigUnavailable)
}
