// Command signalkit scans evidence bundles and prints actionable signals
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"signalkit/internal/cli"
	perr "signalkit/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "signalkit:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for usage style problems and 1 for everything else
func exitCode(err error) int {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeJSON, perr.ErrorCodeValidation:
		return 2
	default:
		return 1
	}
}
