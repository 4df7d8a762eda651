package bench

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestComputeStats verifies min/max/mean over a run set.
func TestComputeStats(t *testing.T) {
	durations := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
	}
	stats := ComputeStats(durations)
	if stats.Min != 10*time.Millisecond {
		t.Errorf("min: got %v", stats.Min)
	}
	if stats.Max != 30*time.Millisecond {
		t.Errorf("max: got %v", stats.Max)
	}
	if stats.Mean != 20*time.Millisecond {
		t.Errorf("mean: got %v", stats.Mean)
	}

	if ComputeStats(nil) != (Stats{}) {
		t.Error("empty input should give zero stats")
	}
}

// TestCalcBandwidth verifies GB/s computation and the zero-duration guard.
func TestCalcBandwidth(t *testing.T) {
	// 1 GB in 1 second.
	if got := CalcBandwidth(1e9, time.Second); got != 1.0 {
		t.Errorf("1 GB in 1s should be 1 GB/s, got %f", got)
	}
	// 192 MiB in 10 ms.
	got := CalcBandwidth(3*16*1024*1024*4, 10*time.Millisecond)
	want := float64(3*16*1024*1024*4) / 0.010 / 1e9
	if got < want*0.999 || got > want*1.001 {
		t.Errorf("bandwidth: got %f want %f", got, want)
	}
	if CalcBandwidth(1e9, 0) != 0 {
		t.Error("zero duration should give 0")
	}
}

// TestCheckBandwidthFloor verifies the gate semantics.
func TestCheckBandwidthFloor(t *testing.T) {
	if err := CheckBandwidthFloor(5.0, 0); err != nil {
		t.Errorf("floor 0 disables the gate: %v", err)
	}
	if err := CheckBandwidthFloor(5.0, 4.0); err != nil {
		t.Errorf("above floor should pass: %v", err)
	}
	err := CheckBandwidthFloor(3.0, 4.0)
	if err == nil {
		t.Fatal("below floor should fail")
	}
	var threshold *ThresholdError
	if !errors.As(err, &threshold) {
		t.Errorf("gate breach produced %T, want *ThresholdError", err)
	}
	if threshold.MeanGBps != 3.0 || threshold.Floor != 4.0 {
		t.Errorf("threshold fields: %+v", threshold)
	}
}

// TestFormatTable verifies the table includes runs and aggregate rows.
func TestFormatTable(t *testing.T) {
	runs := []RunResult{
		{Index: 0, Cold: true, Duration: 12 * time.Millisecond, GBps: 10.5},
		{Index: 1, Duration: 8 * time.Millisecond, GBps: 15.2},
	}
	stats := ComputeStats([]time.Duration{8 * time.Millisecond})

	var buf bytes.Buffer
	FormatTable(runs, stats, &buf)
	out := buf.String()

	if !strings.Contains(out, "yes") {
		t.Error("cold run not marked")
	}
	if !strings.Contains(out, "(mean)") {
		t.Error("aggregate rows missing")
	}
}

// TestFormatJSON verifies the JSON report decodes back cleanly.
func TestFormatJSON(t *testing.T) {
	runs := []RunResult{
		{Index: 0, Cold: true, Duration: 12 * time.Millisecond, GBps: 10.5},
	}
	stats := ComputeStats([]time.Duration{12 * time.Millisecond})

	var buf bytes.Buffer
	FormatJSON(runs, stats, &buf)

	var decoded struct {
		Runs []struct {
			Cold bool    `json:"cold"`
			GBps float64 `json:"gbps"`
		} `json:"runs"`
		Stats struct {
			MeanMS float64 `json:"mean_ms"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Runs) != 1 || !decoded.Runs[0].Cold || decoded.Runs[0].GBps != 10.5 {
		t.Errorf("runs did not round-trip: %+v", decoded.Runs)
	}
	if decoded.Stats.MeanMS != 12 {
		t.Errorf("stats mean: got %v", decoded.Stats.MeanMS)
	}
}
