// Package tour implements the compute exercises: each function runs one
// self-contained demonstration on the device and verifies the result
// against a host-computed expectation.
//
// Every exercise takes an explicit *compute.Context and returns a typed
// result carrying one or more verify.Outcome values. Errors returned are
// backend failures (compute.RuntimeError); a numeric mismatch is not an
// error here — callers decide how to surface the outcome, typically as
// the process exit status.
package tour

import "fmt"

// workgroupSize is the 1D workgroup shape shared by the element-wise
// kernels. 256 fits every adapter the detector heuristics accept.
const workgroupSize = 256

// Accumulate folds a slice with the given operator on the host. It is
// the final-stage combiner for device partial sums and the reference
// path for expected values.
func Accumulate[T int32 | uint32 | float32 | float64](in []T, kind string) (T, error) {
	var zero T
	if len(in) == 0 {
		return zero, nil
	}
	switch kind {
	case "sum":
		var s T
		for _, v := range in {
			s += v
		}
		return s, nil
	case "min":
		m := in[0]
		for _, v := range in[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case "max":
		m := in[0]
		for _, v := range in[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	default:
		return zero, fmt.Errorf("unknown accumulate kind %q", kind)
	}
}

// SeriesSum returns 1+2+...+n.
func SeriesSum(n int) float64 {
	return float64(n) * (float64(n) + 1) / 2
}

// GroupSeriesSum returns the sum of k over [group*size, (group+1)*size).
func GroupSeriesSum(group, size int) int {
	lo := group * size
	hi := lo + size - 1
	return (lo + hi) * size / 2
}
