// Command vegbatch analyzes vegetation health across a set of aerial captures.
//
// Arguments are image files or directories; directories are scanned for image
// files (not recursively). For every capture the classified map and JSON report
// can be written to --output, and a summary is printed to stdout as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitGeneralRuntimeError)
	}
}
