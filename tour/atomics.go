package tour

import (
	"fmt"
	"io"
	"math"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/verify"
)

const racyCounterWGSL = `
	@group(0) @binding(0) var<storage, read_write> count : array<i32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		// Deliberate data race: read-modify-write with no synchronization.
		count[0] = count[0] + 1;
	}
`

const atomicCounterWGSL = `
	@group(0) @binding(0) var<storage, read_write> count : array<atomic<i32>>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		atomicAdd(&count[0], 1);
	}
`

type AtomicCounterOptions struct {
	N int
}

type AtomicCounterResult struct {
	N       int
	Racy    int32
	Atomic  int32
	Outcome verify.Outcome
}

// AtomicCounter launches N increments twice: once through a plain
// read-modify-write, which drops updates under contention, and once
// through atomicAdd, which must land every one of them. Only the atomic
// variant is verified; the racy count is reported for contrast.
func AtomicCounter(c *compute.Context, opts AtomicCounterOptions, out io.Writer) (AtomicCounterResult, error) {
	n := opts.N
	if n <= 0 {
		n = 1024
	}
	// The counter kernels have no bounds check; every launched invocation
	// increments, so the launch grid must cover n exactly.
	if n%workgroupSize != 0 {
		return AtomicCounterResult{}, fmt.Errorf("n (%d) must be a multiple of the group size (%d)", n, workgroupSize)
	}
	groups := compute.Workgroups1D(n, workgroupSize)

	runCounter := func(label, wgsl string) (int32, error) {
		buf, err := compute.NewBuffer(c, label, []int32{0})
		if err != nil {
			return 0, err
		}
		defer buf.Destroy()

		kernel, err := compute.CompileKernel(c, label, wgsl, []compute.Binding{{Buffer: buf}})
		if err != nil {
			return 0, err
		}
		defer kernel.Release()

		if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
			return 0, err
		}
		observed, err := compute.ReadBack[int32](c, buf, 1)
		if err != nil {
			return 0, err
		}
		return observed[0], nil
	}

	racy, err := runCounter("RacyCount", racyCounterWGSL)
	if err != nil {
		return AtomicCounterResult{}, err
	}
	fmt.Fprintf(out, "Non-atomic count: %d (expected %d, lost updates likely)\n", racy, n)

	atomic, err := runCounter("AtomicCount", atomicCounterWGSL)
	if err != nil {
		return AtomicCounterResult{}, err
	}
	fmt.Fprintf(out, "Atomic count: %d (expected %d)\n", atomic, n)

	outcome := verify.Scalar(atomic, int32(n), verify.Exact())
	return AtomicCounterResult{N: n, Racy: racy, Atomic: atomic, Outcome: outcome}, nil
}

// Float storage has no native atomicAdd in WGSL, so the sum is folded in
// through a compare-exchange loop over the u32 bit pattern.
const floatAtomicSumWGSL = `
	@group(0) @binding(0) var<storage, read> data : array<f32>;
	@group(0) @binding(1) var<storage, read_write> sum : array<atomic<u32>>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&data)) {
			return;
		}
		let v = data[gid.x];
		var old_val : u32 = atomicLoad(&sum[0]);
		loop {
			let new_val = bitcast<u32>(bitcast<f32>(old_val) + v);
			let result = atomicCompareExchangeWeak(&sum[0], old_val, new_val);
			if (result.exchanged) {
				break;
			}
			old_val = result.old_value;
		}
	}
`

type FloatAtomicSumOptions struct {
	N int
}

type FloatAtomicSumResult struct {
	N       int
	Sum     float32
	Outcome verify.Outcome
}

// FloatAtomicSum adds N ones into a single float accumulator via the
// CAS loop and checks the total within an absolute epsilon of N.
func FloatAtomicSum(c *compute.Context, opts FloatAtomicSumOptions, out io.Writer) (FloatAtomicSumResult, error) {
	n := opts.N
	if n <= 0 {
		n = 512
	}

	data := make([]float32, n)
	for i := range data {
		data[i] = 1.0
	}

	dataBuf, err := compute.NewBuffer(c, "FPSum_Data", data)
	if err != nil {
		return FloatAtomicSumResult{}, err
	}
	defer dataBuf.Destroy()
	sumBuf, err := compute.NewBuffer(c, "FPSum_Out", []uint32{math.Float32bits(0)})
	if err != nil {
		return FloatAtomicSumResult{}, err
	}
	defer sumBuf.Destroy()

	kernel, err := compute.CompileKernel(c, "FPSum", floatAtomicSumWGSL, []compute.Binding{
		{Buffer: dataBuf, ReadOnly: true},
		{Buffer: sumBuf},
	})
	if err != nil {
		return FloatAtomicSumResult{}, err
	}
	defer kernel.Release()

	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: compute.Workgroups1D(n, workgroupSize)}); err != nil {
		return FloatAtomicSumResult{}, err
	}

	bits, err := compute.ReadBack[uint32](c, sumBuf, 1)
	if err != nil {
		return FloatAtomicSumResult{}, err
	}
	sum := math.Float32frombits(bits[0])

	fmt.Fprintf(out, "FP atomic sum: %v (expected %v)\n", sum, float32(n))

	outcome := verify.Scalar(sum, float32(n), verify.AbsEps(0.01))
	return FloatAtomicSumResult{N: n, Sum: sum, Outcome: outcome}, nil
}

const atomicMaxWGSL = `
	@group(0) @binding(0) var<storage, read> data : array<f32>;
	@group(0) @binding(1) var<storage, read_write> max_val : array<atomic<u32>>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&data)) {
			return;
		}
		let v = data[gid.x];
		var old_val : u32 = atomicLoad(&max_val[0]);
		loop {
			if (v <= bitcast<f32>(old_val)) {
				break;
			}
			let result = atomicCompareExchangeWeak(&max_val[0], old_val, bitcast<u32>(v));
			if (result.exchanged) {
				break;
			}
			old_val = result.old_value;
		}
	}
`

type AtomicMaxOptions struct {
	N      int
	Modulo int
}

type AtomicMaxResult struct {
	N       int
	Max     float32
	Outcome verify.Outcome
}

// AtomicMax folds a max over values i%modulo through a compare-exchange
// loop. The accumulator starts at 0.0; all inputs are non-negative, so
// the bit-pattern comparison through bitcast is ordered correctly.
func AtomicMax(c *compute.Context, opts AtomicMaxOptions, out io.Writer) (AtomicMaxResult, error) {
	n := opts.N
	if n <= 0 {
		n = 256
	}
	modulo := opts.Modulo
	if modulo <= 0 {
		modulo = 100
	}

	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i % modulo)
	}
	// Host-side reference for the expected max.
	expected, err := Accumulate(data, "max")
	if err != nil {
		return AtomicMaxResult{}, err
	}

	dataBuf, err := compute.NewBuffer(c, "Max_Data", data)
	if err != nil {
		return AtomicMaxResult{}, err
	}
	defer dataBuf.Destroy()
	maxBuf, err := compute.NewBuffer(c, "Max_Out", []uint32{math.Float32bits(0)})
	if err != nil {
		return AtomicMaxResult{}, err
	}
	defer maxBuf.Destroy()

	kernel, err := compute.CompileKernel(c, "Max", atomicMaxWGSL, []compute.Binding{
		{Buffer: dataBuf, ReadOnly: true},
		{Buffer: maxBuf},
	})
	if err != nil {
		return AtomicMaxResult{}, err
	}
	defer kernel.Release()

	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: compute.Workgroups1D(n, workgroupSize)}); err != nil {
		return AtomicMaxResult{}, err
	}

	bits, err := compute.ReadBack[uint32](c, maxBuf, 1)
	if err != nil {
		return AtomicMaxResult{}, err
	}
	observed := math.Float32frombits(bits[0])

	fmt.Fprintf(out, "Atomic max: %v (expected %v)\n", observed, expected)

	outcome := verify.Scalar(observed, expected, verify.AbsEps(1e-3))
	return AtomicMaxResult{N: n, Max: observed, Outcome: outcome}, nil
}

const fenceProducerWGSL = `
	@group(0) @binding(0) var<storage, read_write> data : array<i32>;
	@group(0) @binding(1) var<storage, read_write> flags : array<atomic<i32>>;

	@compute @workgroup_size(32)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&data)) {
			return;
		}
		data[gid.x] = i32(gid.x) + 1;
		// Make the data write visible before the flag store.
		storageBarrier();
		atomicStore(&flags[gid.x], 1);
	}
`

const fenceConsumerWGSL = `
	@group(0) @binding(0) var<storage, read> data : array<i32>;
	@group(0) @binding(1) var<storage, read_write> flags : array<atomic<i32>>;
	@group(0) @binding(2) var<storage, read_write> total : array<atomic<i32>>;

	@compute @workgroup_size(32)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&data)) {
			return;
		}
		if (atomicLoad(&flags[gid.x]) == 1) {
			atomicAdd(&total[0], data[gid.x]);
		}
	}
`

type FenceOrderingOptions struct {
	Producers int
}

type FenceOrderingResult struct {
	Producers int
	Total     int32
	Outcome   verify.Outcome
}

// FenceOrdering runs a producer dispatch that writes a value and then
// sets a per-slot ready flag, followed by a consumer dispatch that sums
// the flagged values. The two passes sit in one submission; queue order
// guarantees the producer's writes are visible to the consumer, and the
// barrier orders data before flag within the producer. Expected total is
// 1+2+...+P.
func FenceOrdering(c *compute.Context, opts FenceOrderingOptions, out io.Writer) (FenceOrderingResult, error) {
	producers := opts.Producers
	if producers <= 0 {
		producers = 32
	}

	dataBuf, err := compute.NewEmptyBuffer(c, "Fence_Data", producers)
	if err != nil {
		return FenceOrderingResult{}, err
	}
	defer dataBuf.Destroy()
	flagBuf, err := compute.NewEmptyBuffer(c, "Fence_Flags", producers)
	if err != nil {
		return FenceOrderingResult{}, err
	}
	defer flagBuf.Destroy()
	totalBuf, err := compute.NewBuffer(c, "Fence_Total", []int32{0})
	if err != nil {
		return FenceOrderingResult{}, err
	}
	defer totalBuf.Destroy()

	producer, err := compute.CompileKernel(c, "FenceProducer", fenceProducerWGSL, []compute.Binding{
		{Buffer: dataBuf},
		{Buffer: flagBuf},
	})
	if err != nil {
		return FenceOrderingResult{}, err
	}
	defer producer.Release()

	consumer, err := compute.CompileKernel(c, "FenceConsumer", fenceConsumerWGSL, []compute.Binding{
		{Buffer: dataBuf, ReadOnly: true},
		{Buffer: flagBuf},
		{Buffer: totalBuf},
	})
	if err != nil {
		return FenceOrderingResult{}, err
	}
	defer consumer.Release()

	groups := compute.Workgroups1D(producers, 32)
	if err := compute.Submit(c,
		compute.Dispatch{Kernel: producer, X: groups},
		compute.Dispatch{Kernel: consumer, X: groups},
	); err != nil {
		return FenceOrderingResult{}, err
	}

	observed, err := compute.ReadBack[int32](c, totalBuf, 1)
	if err != nil {
		return FenceOrderingResult{}, err
	}

	expected := int32(SeriesSum(producers))
	fmt.Fprintf(out, "Fence ordering result: %d (expected %d)\n", observed[0], expected)

	outcome := verify.Scalar(observed[0], expected, verify.Exact())
	return FenceOrderingResult{Producers: producers, Total: observed[0], Outcome: outcome}, nil
}
