package tour

import (
	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/verify"
)

const copyDoubleWGSL = `
	@group(0) @binding(0) var<storage, read> src : array<i32>;
	@group(0) @binding(1) var<storage, read_write> dst : array<i32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&dst)) {
			return;
		}
		dst[gid.x] = src[gid.x] * 2;
	}
`

type CopyScaleOptions struct {
	N int
}

type CopyScaleResult struct {
	N       int
	Outcome verify.Outcome
}

// CopyScale doubles an integer sequence into a separate output buffer
// and checks every element exactly.
func CopyScale(c *compute.Context, opts CopyScaleOptions) (CopyScaleResult, error) {
	n := opts.N
	if n <= 0 {
		n = 1024
	}

	src := make([]int32, n)
	for i := range src {
		src[i] = int32(i)
	}

	srcBuf, err := compute.NewBuffer(c, "Copy_Src", src)
	if err != nil {
		return CopyScaleResult{}, err
	}
	defer srcBuf.Destroy()
	dstBuf, err := compute.NewEmptyBuffer(c, "Copy_Dst", n)
	if err != nil {
		return CopyScaleResult{}, err
	}
	defer dstBuf.Destroy()

	kernel, err := compute.CompileKernel(c, "Copy", copyDoubleWGSL, []compute.Binding{
		{Buffer: srcBuf, ReadOnly: true},
		{Buffer: dstBuf},
	})
	if err != nil {
		return CopyScaleResult{}, err
	}
	defer kernel.Release()

	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: compute.Workgroups1D(n, workgroupSize)}); err != nil {
		return CopyScaleResult{}, err
	}

	observed, err := compute.ReadBack[int32](c, dstBuf, n)
	if err != nil {
		return CopyScaleResult{}, err
	}

	outcome := verify.ValuesFn(observed, func(i int) int32 { return int32(i) * 2 }, verify.Exact())
	return CopyScaleResult{N: n, Outcome: outcome}, nil
}

const scaleUniformWGSL = `
	@group(0) @binding(0) var<storage, read_write> data : array<f32>;
	@group(0) @binding(1) var<uniform> scale : f32;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&data)) {
			return;
		}
		data[gid.x] = data[gid.x] * scale;
	}
`

type SpecializeOptions struct {
	N     int
	Scale float32
}

type SpecializeResult struct {
	N       int
	Scale   float32
	Outcome verify.Outcome
}

// Specialize applies a scale factor delivered through a uniform buffer,
// so the parameter reaches the kernel at dispatch time instead of being
// baked into the shader source. Input is all ones; the product is
// checked exactly.
func Specialize(c *compute.Context, opts SpecializeOptions) (SpecializeResult, error) {
	n := opts.N
	if n <= 0 {
		n = 1 << 20
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 2.0
	}

	data := make([]float32, n)
	for i := range data {
		data[i] = 1.0
	}

	dataBuf, err := compute.NewBuffer(c, "Spec_Data", data)
	if err != nil {
		return SpecializeResult{}, err
	}
	defer dataBuf.Destroy()
	scaleBuf, err := compute.NewUniformBuffer(c, "Spec_Scale", []float32{scale})
	if err != nil {
		return SpecializeResult{}, err
	}
	defer scaleBuf.Destroy()

	kernel, err := compute.CompileKernel(c, "Spec", scaleUniformWGSL, []compute.Binding{
		{Buffer: dataBuf},
		{Buffer: scaleBuf, Uniform: true},
	})
	if err != nil {
		return SpecializeResult{}, err
	}
	defer kernel.Release()

	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: compute.Workgroups1D(n, workgroupSize)}); err != nil {
		return SpecializeResult{}, err
	}

	observed, err := compute.ReadBack[float32](c, dataBuf, n)
	if err != nil {
		return SpecializeResult{}, err
	}

	outcome := verify.ValuesFn(observed, func(int) float32 { return scale }, verify.Exact())
	return SpecializeResult{N: n, Scale: scale, Outcome: outcome}, nil
}
