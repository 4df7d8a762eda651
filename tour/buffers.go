package tour

import (
	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/verify"
)

// Three buffer lifetime patterns: a device-internal buffer the host never
// seeds, a host slice round-tripped through the device, and a read-only
// input producing into a separate output.

const fillIndexWGSL = `
	@group(0) @binding(0) var<storage, read_write> dst : array<f32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&dst)) {
			return;
		}
		dst[gid.x] = f32(gid.x);
	}
`

const fillConstWGSL = `
	@group(0) @binding(0) var<storage, read_write> dst : array<f32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&dst)) {
			return;
		}
		dst[gid.x] = 2.0;
	}
`

const doubleWGSL = `
	@group(0) @binding(0) var<storage, read> src : array<f32>;
	@group(0) @binding(1) var<storage, read_write> dst : array<f32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&dst)) {
			return;
		}
		dst[gid.x] = src[gid.x] * 2.0;
	}
`

type BufferPatternsOptions struct {
	N int
}

type PatternResult struct {
	Name    string
	Outcome verify.Outcome
}

// BufferPatterns runs the three patterns in order and verifies each
// exhaustively. All produced values are exactly representable, so the
// checks are exact.
func BufferPatterns(c *compute.Context, opts BufferPatternsOptions) ([]PatternResult, error) {
	n := opts.N
	if n <= 0 {
		n = 1024
	}
	groups := compute.Workgroups1D(n, workgroupSize)

	var results []PatternResult

	// Pattern A: device-internal storage, no host seed.
	{
		buf, err := compute.NewEmptyBuffer(c, "PatternA", n)
		if err != nil {
			return nil, err
		}
		defer buf.Destroy()

		kernel, err := compute.CompileKernel(c, "PatternA", fillIndexWGSL, []compute.Binding{{Buffer: buf}})
		if err != nil {
			return nil, err
		}
		defer kernel.Release()

		if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
			return nil, err
		}
		observed, err := compute.ReadBack[float32](c, buf, n)
		if err != nil {
			return nil, err
		}
		outcome := verify.ValuesFn(observed, func(i int) float32 { return float32(i) }, verify.Exact())
		results = append(results, PatternResult{Name: "internal storage", Outcome: outcome})
	}

	// Pattern B: host slice uploaded, overwritten on device, read back.
	{
		host := make([]float32, n)
		buf, err := compute.NewBuffer(c, "PatternB", host)
		if err != nil {
			return nil, err
		}
		defer buf.Destroy()

		kernel, err := compute.CompileKernel(c, "PatternB", fillConstWGSL, []compute.Binding{{Buffer: buf}})
		if err != nil {
			return nil, err
		}
		defer kernel.Release()

		if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
			return nil, err
		}
		written, err := compute.ReadBack[float32](c, buf, n)
		if err != nil {
			return nil, err
		}
		copy(host, written) // writeback into the original slice
		outcome := verify.ValuesFn(host, func(int) float32 { return 2.0 }, verify.Exact())
		results = append(results, PatternResult{Name: "writeback view", Outcome: outcome})
	}

	// Pattern C: read-only input, separate output.
	{
		input := make([]float32, n)
		for i := range input {
			input[i] = 3.0
		}
		in, err := compute.NewBuffer(c, "PatternC_In", input)
		if err != nil {
			return nil, err
		}
		defer in.Destroy()
		outBuf, err := compute.NewEmptyBuffer(c, "PatternC_Out", n)
		if err != nil {
			return nil, err
		}
		defer outBuf.Destroy()

		kernel, err := compute.CompileKernel(c, "PatternC", doubleWGSL, []compute.Binding{
			{Buffer: in, ReadOnly: true},
			{Buffer: outBuf},
		})
		if err != nil {
			return nil, err
		}
		defer kernel.Release()

		if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
			return nil, err
		}
		observed, err := compute.ReadBack[float32](c, outBuf, n)
		if err != nil {
			return nil, err
		}
		outcome := verify.ValuesFn(observed, func(int) float32 { return 6.0 }, verify.Exact())
		results = append(results, PatternResult{Name: "read-only view", Outcome: outcome})
	}

	return results, nil
}
