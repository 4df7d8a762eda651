package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/internal/bench"
	"github.com/example/go-gpu-tour/verify"
)

func main() {
	err := NewRootCmd().Execute()
	if err == nil {
		return
	}

	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

// exitCode separates wrong answers from broken runtimes: a numeric
// mismatch or a missed benchmark floor exits 1, everything else 2, so
// scripts can tell a failed check from a failed run.
func exitCode(err error) int {
	var mismatch *verify.MismatchError
	if errors.As(err, &mismatch) {
		return 1
	}
	var threshold *bench.ThresholdError
	if errors.As(err, &threshold) {
		return 1
	}
	return 2
}
