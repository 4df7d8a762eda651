package tour

import (
	"strings"
	"testing"
)

func TestAccumulate(t *testing.T) {
	in := []float32{3, -1, 7, 2}

	sum, err := Accumulate(in, "sum")
	if err != nil || sum != 11 {
		t.Errorf("sum = %v, %v; want 11, nil", sum, err)
	}
	mn, err := Accumulate(in, "min")
	if err != nil || mn != -1 {
		t.Errorf("min = %v, %v; want -1, nil", mn, err)
	}
	mx, err := Accumulate(in, "max")
	if err != nil || mx != 7 {
		t.Errorf("max = %v, %v; want 7, nil", mx, err)
	}
}

func TestAccumulateEmpty(t *testing.T) {
	got, err := Accumulate([]int32{}, "max")
	if err != nil || got != 0 {
		t.Errorf("Accumulate(empty) = %v, %v; want 0, nil", got, err)
	}
}

func TestAccumulateUnknownKind(t *testing.T) {
	if _, err := Accumulate([]int32{1}, "product"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSeriesSum(t *testing.T) {
	if got := SeriesSum(1000000); got != 500000500000 {
		t.Errorf("SeriesSum(1000000) = %v; want 500000500000", got)
	}
	if got := SeriesSum(32); got != 528 {
		t.Errorf("SeriesSum(32) = %v; want 528", got)
	}
}

func TestGroupSeriesSumPartitionsTotal(t *testing.T) {
	const n, size = 1024, 128
	total := 0
	for g := 0; g < n/size; g++ {
		total += GroupSeriesSum(g, size)
	}
	// Input values run 0..n-1, so the group sums must cover 0+1+...+n-1.
	want := (n - 1) * n / 2
	if total != want {
		t.Errorf("sum of group sums = %d; want %d", total, want)
	}
	if got := GroupSeriesSum(0, 4); got != 6 {
		t.Errorf("GroupSeriesSum(0, 4) = %d; want 6", got)
	}
	if got := GroupSeriesSum(1, 4); got != 22 {
		t.Errorf("GroupSeriesSum(1, 4) = %d; want 22", got)
	}
}

func TestMatMulExpectedMatchesNaiveProduct(t *testing.T) {
	const n = 8
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var acc float32
			for k := 0; k < n; k++ {
				acc += float32(i+1) * float32(j+1)
			}
			if got := MatMulExpected(i, j, n); got != acc {
				t.Errorf("MatMulExpected(%d, %d, %d) = %v; want %v", i, j, n, got, acc)
			}
		}
	}
}

func TestJacobiResidualsExactSolution(t *testing.T) {
	// For n=2 the system 4x0-x1=1, -x0+4x1=1 has the solution (1/3, 1/3).
	x := []float32{1.0 / 3.0, 1.0 / 3.0}
	for i, r := range JacobiResiduals(x) {
		if r > 1e-6 || r < -1e-6 {
			t.Errorf("residual[%d] = %v; want ~0", i, r)
		}
	}
}

func TestGroupReduceWGSLSubstitution(t *testing.T) {
	src := groupReduceWGSL(128)
	for _, want := range []string{
		"@workgroup_size(128)",
		"array<f32, 128>",
		"var stride : u32 = 64u",
		"fn main(",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated shader missing %q", want)
		}
	}
}

func TestAbsSumWGSLSubstitution(t *testing.T) {
	src := absSumWGSL(256)
	if !strings.Contains(src, "@workgroup_size(256)") {
		t.Error("generated shader missing workgroup size")
	}
	if !strings.Contains(src, "abs(input[gid.x])") {
		t.Error("generated shader missing abs load")
	}
}

func TestMatMulWGSLSubstitution(t *testing.T) {
	src := matmulWGSL(256, 256, 16)
	for _, want := range []string{
		"const N : u32 = 256u;",
		"const TILE : u32 = 16u;",
		"@workgroup_size(16, 16)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated shader missing %q", want)
		}
	}
}

func TestGroupReduceRejectsUnevenN(t *testing.T) {
	if _, err := GroupReduce(nil, GroupReduceOptions{N: 100, GroupSize: 64}, nil); err == nil {
		t.Error("expected error for n not divisible by group size")
	}
}

func TestScopedReduceRejectsUnevenN(t *testing.T) {
	if _, err := ScopedReduce(nil, ScopedReduceOptions{N: 100, GroupSize: 128}); err == nil {
		t.Error("expected error for n not divisible by group size")
	}
}

func TestMatMulRejectsUnevenN(t *testing.T) {
	if _, err := MatMul(nil, MatMulOptions{N: 100}, nil); err == nil {
		t.Error("expected error for n not divisible by tile size")
	}
}

func TestAtomicCounterRejectsUnevenN(t *testing.T) {
	// The counter kernels increment in every invocation, so a partial
	// last group would land extra increments and fail a correct run.
	if _, err := AtomicCounter(nil, AtomicCounterOptions{N: 1000}, nil); err == nil {
		t.Error("expected error for n not divisible by group size")
	}
}

func TestJacobiRejectsUnevenN(t *testing.T) {
	if _, err := Jacobi(nil, JacobiOptions{N: 100}, nil); err == nil {
		t.Error("expected error for n not divisible by group size")
	}
}
