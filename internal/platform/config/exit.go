package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitOnError terminates the process for a command error. A help
// request exits cleanly, since the flag package has already printed the
// usage text; everything else is fatal. A nil error is a no-op.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	Exitf("Error: %v", err)
}
