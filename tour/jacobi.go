package tour

import (
	"fmt"
	"io"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/verify"
)

// Jacobi iteration for the 1D tridiagonal system A·x = b with diagonal 4,
// off-diagonals -1 and b = 1: each sweep reads x and writes the next
// iterate into a second buffer, then the buffers swap roles.

const jacobiUpdateWGSL = `
	@group(0) @binding(0) var<storage, read> x_cur : array<f32>;
	@group(0) @binding(1) var<storage, read_write> x_new : array<f32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		let i = gid.x;
		let n = arrayLength(&x_cur);
		if (i >= n) {
			return;
		}
		var v : f32 = 1.0;
		if (i > 0u) {
			v = v + x_cur[i - 1u];
		}
		if (i < n - 1u) {
			v = v + x_cur[i + 1u];
		}
		x_new[i] = v / 4.0;
	}
`

// absSumWGSL reduces |x| per work group, same tree shape as the
// reduction exercise.
func absSumWGSL(groupSize int) string {
	return fmt.Sprintf(`
	@group(0) @binding(0) var<storage, read> input : array<f32>;
	@group(0) @binding(1) var<storage, read_write> partial : array<f32>;

	var<workgroup> scratch : array<f32, %d>;

	@compute @workgroup_size(%d)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>,
	        @builtin(local_invocation_id) lid : vec3<u32>,
	        @builtin(workgroup_id) wid : vec3<u32>) {
		scratch[lid.x] = abs(input[gid.x]);
		workgroupBarrier();

		for (var stride : u32 = %du; stride > 0u; stride = stride / 2u) {
			if (lid.x < stride) {
				scratch[lid.x] = scratch[lid.x] + scratch[lid.x + stride];
			}
			workgroupBarrier();
		}

		if (lid.x == 0u) {
			partial[wid.x] = scratch[0u];
		}
	}
`, groupSize, groupSize, groupSize/2)
}

type JacobiOptions struct {
	N           int
	Iterations  int
	NormEvery   int
	ResidualEps float64
}

type JacobiResult struct {
	N           int
	Iterations  int
	FinalNorm   float64
	MaxResidual float64
	Outcome     verify.Outcome
}

// Jacobi runs the sweeps on the device, printing the solution's 1-norm
// periodically (reduced on device, folded on host), and finally checks
// the residual b - A·x of the converged iterate on the host against
// zero. The spectral radius of the iteration is about 1/2, so a couple
// hundred sweeps land well inside the epsilon.
func Jacobi(c *compute.Context, opts JacobiOptions, out io.Writer) (JacobiResult, error) {
	n := opts.N
	if n <= 0 {
		n = 512
	}
	iters := opts.Iterations
	if iters <= 0 {
		iters = 200
	}
	normEvery := opts.NormEvery
	if normEvery <= 0 {
		normEvery = 50
	}
	eps := opts.ResidualEps
	if eps <= 0 {
		eps = 1e-4
	}
	if n%workgroupSize != 0 {
		return JacobiResult{}, fmt.Errorf("n (%d) must be a multiple of the group size (%d)", n, workgroupSize)
	}
	groups := n / workgroupSize

	// Both iterates start at zero.
	xA, err := compute.NewEmptyBuffer(c, "Jacobi_A", n)
	if err != nil {
		return JacobiResult{}, err
	}
	defer xA.Destroy()
	xB, err := compute.NewEmptyBuffer(c, "Jacobi_B", n)
	if err != nil {
		return JacobiResult{}, err
	}
	defer xB.Destroy()
	partialBuf, err := compute.NewEmptyBuffer(c, "Jacobi_Norm", groups)
	if err != nil {
		return JacobiResult{}, err
	}
	defer partialBuf.Destroy()

	// One kernel per sweep direction; the pair alternates.
	forward, err := compute.CompileKernel(c, "JacobiAB", jacobiUpdateWGSL, []compute.Binding{
		{Buffer: xA, ReadOnly: true},
		{Buffer: xB},
	})
	if err != nil {
		return JacobiResult{}, err
	}
	defer forward.Release()
	backward, err := compute.CompileKernel(c, "JacobiBA", jacobiUpdateWGSL, []compute.Binding{
		{Buffer: xB, ReadOnly: true},
		{Buffer: xA},
	})
	if err != nil {
		return JacobiResult{}, err
	}
	defer backward.Release()

	norm, err := compute.CompileKernel(c, "JacobiNorm", absSumWGSL(workgroupSize), []compute.Binding{
		{Buffer: xA, ReadOnly: true},
		{Buffer: partialBuf},
	})
	if err != nil {
		return JacobiResult{}, err
	}
	defer norm.Release()

	dispatchGroups := compute.Workgroups1D(n, workgroupSize)
	var finalNorm float64

	for iter := 0; iter < iters; iter++ {
		sweep := forward
		if iter%2 == 1 {
			sweep = backward
		}
		if err := compute.Submit(c, compute.Dispatch{Kernel: sweep, X: dispatchGroups}); err != nil {
			return JacobiResult{}, err
		}

		if iter%normEvery == 0 {
			// The norm kernel reads xA; point it at whichever buffer
			// holds the freshest iterate.
			current := xB
			if iter%2 == 1 {
				current = xA
			}
			if err := norm.Rebind(c, []compute.Binding{
				{Buffer: current, ReadOnly: true},
				{Buffer: partialBuf},
			}); err != nil {
				return JacobiResult{}, err
			}
			if err := compute.Submit(c, compute.Dispatch{Kernel: norm, X: uint32(groups)}); err != nil {
				return JacobiResult{}, err
			}
			partials, err := compute.ReadBack[float32](c, partialBuf, groups)
			if err != nil {
				return JacobiResult{}, err
			}
			total, err := Accumulate(partials, "sum")
			if err != nil {
				return JacobiResult{}, err
			}
			finalNorm = float64(total)
			fmt.Fprintf(out, "Iteration %d: norm = %v\n", iter, total)
		}
	}

	// The last sweep wrote into xB when iters is odd, xA when even.
	last := xA
	if iters%2 == 1 {
		last = xB
	}
	x, err := compute.ReadBack[float32](c, last, n)
	if err != nil {
		return JacobiResult{}, err
	}

	residuals := JacobiResiduals(x)
	outcome := verify.ValuesFn(residuals, func(int) float64 { return 0 }, verify.AbsEps(eps))

	maxRes, err := Accumulate(residualMagnitudes(residuals), "max")
	if err != nil {
		return JacobiResult{}, err
	}
	fmt.Fprintf(out, "Completed %d iterations, max residual %v\n", iters, maxRes)

	return JacobiResult{
		N:           n,
		Iterations:  iters,
		FinalNorm:   finalNorm,
		MaxResidual: maxRes,
		Outcome:     outcome,
	}, nil
}

// JacobiResiduals computes b - A·x on the host for the tridiagonal
// system. A zero residual vector means the iterate solves the system.
func JacobiResiduals(x []float32) []float64 {
	n := len(x)
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		ax := 4 * float64(x[i])
		if i > 0 {
			ax -= float64(x[i-1])
		}
		if i < n-1 {
			ax -= float64(x[i+1])
		}
		res[i] = 1.0 - ax
	}
	return res
}

func residualMagnitudes(res []float64) []float64 {
	out := make([]float64, len(res))
	for i, r := range res {
		if r < 0 {
			r = -r
		}
		out[i] = r
	}
	return out
}
