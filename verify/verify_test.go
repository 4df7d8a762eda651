package verify

import (
	"errors"
	"testing"
)

// TestScalarExactInteger verifies the counter domain: exact equality only.
func TestScalarExactInteger(t *testing.T) {
	// All 1024 increments landed.
	out := Scalar(int32(1024), int32(1024), Exact())
	if !out.OK {
		t.Errorf("1024 == 1024 should pass exact: %s", out.Message)
	}

	// Lost increments from a non-atomic race.
	out = Scalar(int32(900), int32(1024), Exact())
	if out.OK {
		t.Error("900 != 1024 should fail exact verification")
	}
	if out.Observed != 900 || out.Expected != 1024 {
		t.Errorf("diagnostics should carry observed/expected, got %v/%v", out.Observed, out.Expected)
	}

	// Off by one is still a failure, no partial credit.
	if Scalar(1023, 1024, Exact()).OK {
		t.Error("1023 != 1024 should fail exact verification")
	}
}

// TestScalarAbsEps verifies the float reduction domain.
func TestScalarAbsEps(t *testing.T) {
	out := Scalar(float32(511.995), float32(512.0), AbsEps(0.01))
	if !out.OK {
		t.Errorf("511.995 within 0.01 of 512.0 should pass: %s", out.Message)
	}

	if Scalar(float32(511.9), float32(512.0), AbsEps(0.01)).OK {
		t.Error("511.9 is outside 0.01 of 512.0, should fail")
	}
}

// TestScalarRelTol verifies the aggregate-sum domain: 1% band absorbs
// accumulation-order noise, 2% deviation does not pass.
func TestScalarRelTol(t *testing.T) {
	const expected = 549755813888.0 // N*(N+1)/2 for N=1<<20, as float32 accumulates it

	within := expected * 0.995 // 0.5% low
	if out := Scalar(within, expected, RelTol(0.01)); !out.OK {
		t.Errorf("0.5%% deviation should pass 1%% band: %s", out.Message)
	}

	outside := expected * 0.98 // 2% low
	if Scalar(outside, expected, RelTol(0.01)).OK {
		t.Error("2% deviation should fail 1% band")
	}
}

// TestExactEqualityAlwaysPasses verifies the boundary case that an exact
// match passes under every tolerance policy, including zero-width ones.
func TestExactEqualityAlwaysPasses(t *testing.T) {
	tols := []Tolerance{Exact(), AbsEps(0), AbsEps(1e-9), RelTol(0), RelTol(0.01)}
	for _, tol := range tols {
		if out := Scalar(512.0, 512.0, tol); !out.OK {
			t.Errorf("identical values must pass under %s: %s", tol, out.Message)
		}
	}
}

// TestEpsilonBoundaryInclusive verifies the documented choice that a
// deviation of exactly eps (and exactly frac*|expected|) passes.
func TestEpsilonBoundaryInclusive(t *testing.T) {
	if out := Scalar(1.5, 1.0, AbsEps(0.5)); !out.OK {
		t.Errorf("deviation of exactly eps must pass (inclusive <=): %s", out.Message)
	}
	if out := Scalar(101.0, 100.0, RelTol(0.01)); !out.OK {
		t.Errorf("deviation of exactly frac*|expected| must pass: %s", out.Message)
	}
	// Just past the band fails.
	if Scalar(1.6, 1.0, AbsEps(0.5)).OK {
		t.Error("deviation beyond eps must fail")
	}
}

// TestIdempotence verifies that repeated calls with the same inputs give
// the same outcome.
func TestIdempotence(t *testing.T) {
	obs := []float32{1, 2, 3.5, 4}
	exp := []float32{1, 2, 3, 4}
	first := Values(obs, exp, AbsEps(0.1))
	second := Values(obs, exp, AbsEps(0.1))
	if first != second {
		t.Errorf("outcomes differ across calls: %+v vs %+v", first, second)
	}
	if first.OK {
		t.Error("3.5 vs 3 at eps 0.1 should fail")
	}
	if first.Index != 2 {
		t.Errorf("first mismatch index should be 2, got %d", first.Index)
	}
}

// TestValuesFirstMismatch verifies that diagnostics point at the first
// mismatching element.
func TestValuesFirstMismatch(t *testing.T) {
	obs := []int32{0, 1, 2, 99, 4, 98}
	out := ValuesFn(obs, func(i int) int32 { return int32(i) }, Exact())
	if out.OK {
		t.Fatal("corrupted sequence should fail")
	}
	if out.Index != 3 {
		t.Errorf("expected first mismatch at 3, got %d", out.Index)
	}
	if out.Observed != 99 || out.Expected != 3 {
		t.Errorf("diagnostics wrong: observed %v expected %v", out.Observed, out.Expected)
	}
}

// TestValuesLengthMismatch verifies that a shape mismatch is a failure,
// not a partial pass.
func TestValuesLengthMismatch(t *testing.T) {
	out := Values([]float32{1, 2, 3}, []float32{1, 2}, Exact())
	if out.OK {
		t.Error("length mismatch should fail")
	}
}

// TestValuesAllMatch verifies the exhaustive pass over a clean result.
func TestValuesAllMatch(t *testing.T) {
	obs := make([]float32, 1024)
	for i := range obs {
		obs[i] = float32(i) + 1.0
	}
	out := ValuesFn(obs, func(i int) float32 { return float32(i) + 1.0 }, AbsEps(1e-5))
	if !out.OK {
		t.Errorf("clean vector-add result should pass: %s", out.Message)
	}
	if out.Checked != 1024 {
		t.Errorf("should have checked all 1024 elements, got %d", out.Checked)
	}
}

// TestSampledFnFallsBackToExhaustive verifies that interior corruption is
// still caught: boundary sampling alone would miss it.
func TestSampledFnFallsBackToExhaustive(t *testing.T) {
	obs := make([]int32, 100)
	for i := range obs {
		obs[i] = int32(i)
	}
	obs[50] = -1 // interior corruption, edges clean

	out := SampledFn(obs, func(i int) int32 { return int32(i) }, 3, Exact())
	if out.OK {
		t.Error("interior corruption must be caught by the exhaustive fallback")
	}
	if out.Index != 50 {
		t.Errorf("expected mismatch at 50, got %d", out.Index)
	}
}

// TestSampledFnReportsEdgeFirst verifies that a corrupted tail element is
// reported from the boundary pass before the interior one is reached.
func TestSampledFnReportsEdgeFirst(t *testing.T) {
	obs := make([]int32, 100)
	for i := range obs {
		obs[i] = int32(i)
	}
	obs[40] = -1
	obs[99] = -1

	out := SampledFn(obs, func(i int) int32 { return int32(i) }, 3, Exact())
	if out.OK {
		t.Fatal("corrupted result should fail")
	}
	if out.Index != 99 {
		t.Errorf("boundary pass should report index 99 first, got %d", out.Index)
	}
}

// TestOutcomeErr verifies the error taxonomy: a failed outcome yields a
// *MismatchError, a passed one yields nil.
func TestOutcomeErr(t *testing.T) {
	if err := Scalar(1024, 1024, Exact()).Err(); err != nil {
		t.Errorf("passing outcome should have nil error, got %v", err)
	}

	err := Scalar(900, 1024, Exact()).Err()
	if err == nil {
		t.Fatal("failing outcome should yield an error")
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("error should be a *MismatchError, got %T", err)
	}
	if mismatch.Outcome.Expected != 1024 {
		t.Errorf("error should carry the outcome, got %+v", mismatch.Outcome)
	}
}

// TestNoInputMutation verifies the verifier only reads its inputs.
func TestNoInputMutation(t *testing.T) {
	obs := []float64{1, 2, 3}
	exp := []float64{1, 2, 4}
	Values(obs, exp, Exact())
	if obs[0] != 1 || obs[1] != 2 || obs[2] != 3 || exp[2] != 4 {
		t.Error("inputs were mutated")
	}
}
