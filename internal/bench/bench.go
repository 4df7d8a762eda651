// Package bench provides timing statistics and output formatting for the
// bandwidth benchmark command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// RunResult holds the timing for a single benchmark run.
type RunResult struct {
	Index    int
	Cold     bool // true for the warmup run (pipeline compilation lands here)
	Duration time.Duration
	GBps     float64
}

// Stats holds aggregate timing statistics across timed runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// CalcBandwidth returns GB/s for bytes moved in dur. Returns 0 for a
// zero duration to avoid division by zero.
func CalcBandwidth(bytes int64, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	return float64(bytes) / dur.Seconds() / 1e9
}

// ThresholdError reports a measured mean below the configured floor.
// It is a gate failure, not a runtime fault, and callers map it to a
// distinct exit status.
type ThresholdError struct {
	MeanGBps float64
	Floor    float64
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("mean bandwidth %.2f GB/s below floor %.2f GB/s", e.MeanGBps, e.Floor)
}

// CheckBandwidthFloor returns a ThresholdError if meanGBps is below
// floor. A floor of 0 disables the gate.
func CheckBandwidthFloor(meanGBps, floor float64) error {
	if floor <= 0 {
		return nil
	}
	if meanGBps < floor {
		return &ThresholdError{MeanGBps: meanGBps, Floor: floor}
	}
	return nil
}

// FormatTable writes a human-readable table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %10s\n", "Run", "Cold", "MS", "GB/s")
	fmt.Fprintln(sb, strings.Repeat("-", 36))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.2f  %10.2f\n",
			r.Index+1,
			cold,
			float64(r.Duration.Microseconds())/1000.0,
			r.GBps,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 36))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.2f  %10s  (min)\n", "", "", float64(stats.Min.Microseconds())/1000.0, "")
	fmt.Fprintf(sb, "%-5s  %-5s  %10.2f  %10s  (mean)\n", "", "", float64(stats.Mean.Microseconds())/1000.0, "")
	fmt.Fprintf(sb, "%-5s  %-5s  %10.2f  %10s  (max)\n", "", "", float64(stats.Max.Microseconds())/1000.0, "")

	fmt.Fprint(w, sb.String())
}

type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationMS float64 `json:"duration_ms"`
	GBps       float64 `json:"gbps"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  float64(stats.Min.Microseconds()) / 1000.0,
			MeanMS: float64(stats.Mean.Microseconds()) / 1000.0,
			MaxMS:  float64(stats.Max.Microseconds()) / 1000.0,
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationMS: float64(r.Duration.Microseconds()) / 1000.0,
			GBps:       r.GBps,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
