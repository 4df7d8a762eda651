// Package verify compares device-produced numeric results against
// analytically computed expectations under a tolerance policy.
//
// The expected value must come from pure host-side arithmetic, never from
// the device path being checked. Callers are responsible for synchronizing
// the device result back to host memory before verifying; every function
// here only reads its inputs and is safe to call repeatedly.
package verify

import (
	"fmt"
	"math"
)

// Scalar types a device result can carry.
type Number interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// ToleranceKind selects how an observed value is matched.
type ToleranceKind int

const (
	ToleranceExact ToleranceKind = iota // value equality
	ToleranceAbs                        // |obs-exp| <= Eps
	ToleranceRel                        // |obs-exp| <= Frac*|exp|
)

// Tolerance is the matching policy for one verification call.
// Bounds are inclusive: a deviation of exactly Eps (or exactly
// Frac*|expected|) still passes.
type Tolerance struct {
	Kind ToleranceKind
	Eps  float64
	Frac float64
}

// Exact matches only value equality. Use for integer domains (counters,
// integer reductions) and float results that are exactly representable.
func Exact() Tolerance { return Tolerance{Kind: ToleranceExact} }

// AbsEps matches within an absolute epsilon, inclusive.
func AbsEps(eps float64) Tolerance { return Tolerance{Kind: ToleranceAbs, Eps: eps} }

// RelTol matches within a relative band frac*|expected|, inclusive.
// Intended for large aggregate sums where parallel accumulation order
// perturbs the low bits.
func RelTol(frac float64) Tolerance { return Tolerance{Kind: ToleranceRel, Frac: frac} }

func (t Tolerance) String() string {
	switch t.Kind {
	case ToleranceAbs:
		return fmt.Sprintf("abs<=%g", t.Eps)
	case ToleranceRel:
		return fmt.Sprintf("rel<=%g%%", t.Frac*100)
	default:
		return "exact"
	}
}

// matches reports whether observed is acceptable for expected under t.
func (t Tolerance) matches(observed, expected float64) bool {
	if observed == expected {
		return true
	}
	diff := math.Abs(observed - expected)
	switch t.Kind {
	case ToleranceAbs:
		return diff <= t.Eps
	case ToleranceRel:
		return diff <= t.Frac*math.Abs(expected)
	default:
		return false
	}
}

// Outcome is the result of one verification call. It is derived once and
// reported; there is nothing to retry.
type Outcome struct {
	OK        bool
	Checked   int     // elements compared
	Index     int     // first mismatching element, -1 for scalar/none
	Observed  float64 // value at the first mismatch (or the scalar)
	Expected  float64
	Tolerance Tolerance
	Message   string
}

// Err returns nil when the outcome passed, or a *MismatchError carrying
// the diagnostic context otherwise.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	return &MismatchError{Outcome: o}
}

func pass(checked int, tol Tolerance) Outcome {
	return Outcome{
		OK:        true,
		Checked:   checked,
		Index:     -1,
		Tolerance: tol,
		Message:   fmt.Sprintf("%d value(s) matched (%s)", checked, tol),
	}
}

func fail(index, checked int, observed, expected float64, tol Tolerance) Outcome {
	msg := fmt.Sprintf("mismatch at [%d]: observed %v, expected %v (%s)", index, observed, expected, tol)
	if index < 0 {
		msg = fmt.Sprintf("mismatch: observed %v, expected %v (%s)", observed, expected, tol)
	}
	return Outcome{
		OK:        false,
		Checked:   checked,
		Index:     index,
		Observed:  observed,
		Expected:  expected,
		Tolerance: tol,
		Message:   msg,
	}
}

// Scalar verifies a single value.
func Scalar[T Number](observed, expected T, tol Tolerance) Outcome {
	o, e := float64(observed), float64(expected)
	if tol.matches(o, e) {
		out := pass(1, tol)
		out.Observed = o
		out.Expected = e
		return out
	}
	return fail(-1, 1, o, e, tol)
}

// Values exhaustively verifies observed against expected element by
// element. A length mismatch is a failure, never a partial pass.
func Values[T Number](observed, expected []T, tol Tolerance) Outcome {
	if len(observed) != len(expected) {
		out := fail(-1, 0, float64(len(observed)), float64(len(expected)), tol)
		out.Message = fmt.Sprintf("length mismatch: observed %d element(s), expected %d", len(observed), len(expected))
		return out
	}
	return ValuesFn(observed, func(i int) T { return expected[i] }, tol)
}

// ValuesFn exhaustively verifies observed against a closed-form
// expectation evaluated per index.
func ValuesFn[T Number](observed []T, expected func(i int) T, tol Tolerance) Outcome {
	for i, obs := range observed {
		exp := expected(i)
		if !tol.matches(float64(obs), float64(exp)) {
			return fail(i, len(observed), float64(obs), float64(exp), tol)
		}
	}
	return pass(len(observed), tol)
}

// SampledFn checks boundary elements first (the leading and trailing
// `edge` elements) so a corrupted edge is reported before the long scan,
// then always runs the exhaustive pass over every element. It exists for
// diagnostics, not to weaken coverage: sampling alone would miss interior
// corruption, so the exhaustive fallback is unconditional.
func SampledFn[T Number](observed []T, expected func(i int) T, edge int, tol Tolerance) Outcome {
	n := len(observed)
	if edge > n {
		edge = n
	}
	for i := 0; i < edge; i++ {
		for _, idx := range []int{i, n - 1 - i} {
			if !tol.matches(float64(observed[idx]), float64(expected(idx))) {
				return fail(idx, n, float64(observed[idx]), float64(expected(idx)), tol)
			}
		}
	}
	return ValuesFn(observed, expected, tol)
}
