package tour

import (
	"fmt"
	"io"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/verify"
)

const matmulTile = 16

// matmulWGSL builds a tiled matrix multiply C = A·B for square matrices:
// each 16x16 work group stages one tile of A and one of B in workgroup
// memory per step, with barriers separating load and accumulate phases.
func matmulWGSL(n, k, tile int) string {
	return fmt.Sprintf(`
	@group(0) @binding(0) var<storage, read> a : array<f32>;
	@group(0) @binding(1) var<storage, read> b : array<f32>;
	@group(0) @binding(2) var<storage, read_write> c : array<f32>;

	const N : u32 = %du;
	const K : u32 = %du;
	const TILE : u32 = %du;

	var<workgroup> a_tile : array<array<f32, %d>, %d>;
	var<workgroup> b_tile : array<array<f32, %d>, %d>;

	@compute @workgroup_size(%d, %d)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>,
	        @builtin(local_invocation_id) lid : vec3<u32>) {
		let row = gid.y;
		let col = gid.x;
		let lr = lid.y;
		let lc = lid.x;

		var sum : f32 = 0.0;
		for (var t : u32 = 0u; t < K / TILE; t++) {
			a_tile[lr][lc] = a[row * K + t * TILE + lc];
			b_tile[lr][lc] = b[(t * TILE + lr) * N + col];
			workgroupBarrier();

			for (var kk : u32 = 0u; kk < TILE; kk++) {
				sum = sum + a_tile[lr][kk] * b_tile[kk][lc];
			}
			workgroupBarrier();
		}

		c[row * N + col] = sum;
	}
`, n, k, tile, tile, tile, tile, tile, tile, tile)
}

type MatMulOptions struct {
	N int // square matrix dimension, must be a multiple of the tile size
}

type MatMulResult struct {
	N       int
	Outcome verify.Outcome
}

// MatMul multiplies A (a[i][j]=i+1) by B (b[i][j]=j+1) with the tiled
// kernel; the product has the closed form c[i][j]=(i+1)(j+1)N. Every
// element is checked — the entries are integer-valued, so only rounding
// at the top of the float32 range needs headroom, covered by a tight
// relative band.
func MatMul(c *compute.Context, opts MatMulOptions, out io.Writer) (MatMulResult, error) {
	n := opts.N
	if n <= 0 {
		n = 256
	}
	if n%matmulTile != 0 {
		return MatMulResult{}, fmt.Errorf("n (%d) must be a multiple of the tile size (%d)", n, matmulTile)
	}

	a := make([]float32, n*n)
	b := make([]float32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i*n+j] = float32(i + 1)
			b[i*n+j] = float32(j + 1)
		}
	}

	aBuf, err := compute.NewBuffer(c, "MatMul_A", a)
	if err != nil {
		return MatMulResult{}, err
	}
	defer aBuf.Destroy()
	bBuf, err := compute.NewBuffer(c, "MatMul_B", b)
	if err != nil {
		return MatMulResult{}, err
	}
	defer bBuf.Destroy()
	cBuf, err := compute.NewEmptyBuffer(c, "MatMul_C", n*n)
	if err != nil {
		return MatMulResult{}, err
	}
	defer cBuf.Destroy()

	kernel, err := compute.CompileKernel(c, "MatMul", matmulWGSL(n, n, matmulTile), []compute.Binding{
		{Buffer: aBuf, ReadOnly: true},
		{Buffer: bBuf, ReadOnly: true},
		{Buffer: cBuf},
	})
	if err != nil {
		return MatMulResult{}, err
	}
	defer kernel.Release()

	groups := uint32(n / matmulTile)
	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups, Y: groups}); err != nil {
		return MatMulResult{}, err
	}

	observed, err := compute.ReadBack[float32](c, cBuf, n*n)
	if err != nil {
		return MatMulResult{}, err
	}

	fmt.Fprintf(out, "c[0][%d]=%v c[%d][0]=%v c[1][1]=%v\n",
		n-1, observed[n-1], n-1, observed[(n-1)*n], observed[n+1])

	outcome := verify.ValuesFn(observed, func(idx int) float32 {
		return MatMulExpected(idx/n, idx%n, n)
	}, verify.RelTol(1e-6))

	return MatMulResult{N: n, Outcome: outcome}, nil
}

// MatMulExpected is the closed-form product entry for the structured
// inputs: every term of the k-sum is (i+1)(j+1), so the entry is
// (i+1)(j+1)n.
func MatMulExpected(i, j, n int) float32 {
	return float32((i + 1) * (j + 1) * n)
}
