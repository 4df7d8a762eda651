package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/internal/bench"
	"github.com/example/go-gpu-tour/verify"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{
		"devices", "vecadd", "buffers", "reduce", "scoped",
		"copyscale", "specialize", "atomics", "matmul", "jacobi", "bench",
	}
	have := map[string]bool{}
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestExitCodeSeparatesCheckFromRuntimeFailures(t *testing.T) {
	mismatch := verify.Scalar(int32(4), int32(5), verify.Exact()).Err()
	if got := exitCode(mismatch); got != 1 {
		t.Errorf("mismatch should exit 1, got %d", got)
	}
	if got := exitCode(&bench.ThresholdError{MeanGBps: 3, Floor: 4}); got != 1 {
		t.Errorf("bandwidth gate breach should exit 1, got %d", got)
	}
	runtime := &compute.RuntimeError{Op: "request device", Err: fmt.Errorf("no adapter")}
	if got := exitCode(runtime); got != 2 {
		t.Errorf("runtime failure should exit 2, got %d", got)
	}
	if got := exitCode(fmt.Errorf("--format must be 'table' or 'json'")); got != 2 {
		t.Errorf("plain error should exit 2, got %d", got)
	}
}

func TestFinishOutcomeMapsFailureToMismatchError(t *testing.T) {
	ok := verify.Scalar(int32(5), int32(5), verify.Exact())
	if err := finishOutcome("x", ok); err != nil {
		t.Errorf("passing outcome produced error: %v", err)
	}

	bad := verify.Scalar(int32(4), int32(5), verify.Exact())
	err := finishOutcome("x", bad)
	var mismatch *verify.MismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("failing outcome produced %T, want *verify.MismatchError", err)
	}
}
