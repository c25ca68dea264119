// Command maybecheck runs the maybe checks against the realization compiled into it.
// Build it twice to compare both:
//
//	go build ./cmd/maybecheck && ./maybecheck run
//	go build -tags sync ./cmd/maybecheck && ./maybecheck run --workers 16
package main

import (
	"os"

	"github.com/gostdlib/maybesync/cmd/maybecheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
