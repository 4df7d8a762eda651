package tour

import (
	"fmt"
	"io"
	"time"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/internal/bench"
	"github.com/example/go-gpu-tour/verify"
)

// Bandwidth measures effective memory bandwidth with a streaming
// element-wise add: two reads and one write per element, so the moved
// byte count is 3*N*4. The warmup run absorbs pipeline compilation and
// is verified exhaustively; the timed runs only wait for completion.

const bandwidthWGSL = `
	@group(0) @binding(0) var<storage, read> a : array<f32>;
	@group(0) @binding(1) var<storage, read> b : array<f32>;
	@group(0) @binding(2) var<storage, read_write> c : array<f32>;

	@compute @workgroup_size(256)
	fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
		if (gid.x >= arrayLength(&c)) {
			return;
		}
		c[gid.x] = a[gid.x] + b[gid.x];
	}
`

type BandwidthOptions struct {
	N       int
	Runs    int
	MinGBps float64
	JSON    bool
}

type BandwidthResult struct {
	N        int
	Runs     []bench.RunResult
	Stats    bench.Stats
	MeanGBps float64
	Outcome  verify.Outcome
}

func Bandwidth(c *compute.Context, opts BandwidthOptions, out io.Writer) (BandwidthResult, error) {
	n := opts.N
	if n <= 0 {
		n = 16 * 1024 * 1024
	}
	runs := opts.Runs
	if runs <= 0 {
		runs = 5
	}

	a := make([]float32, n)
	b := make([]float32, n)
	for i := range a {
		a[i] = 1.0
		b[i] = 2.0
	}

	bufA, err := compute.NewBuffer(c, "Bandwidth_A", a)
	if err != nil {
		return BandwidthResult{}, err
	}
	defer bufA.Destroy()
	bufB, err := compute.NewBuffer(c, "Bandwidth_B", b)
	if err != nil {
		return BandwidthResult{}, err
	}
	defer bufB.Destroy()
	bufC, err := compute.NewEmptyBuffer(c, "Bandwidth_C", n)
	if err != nil {
		return BandwidthResult{}, err
	}
	defer bufC.Destroy()

	kernel, err := compute.CompileKernel(c, "Bandwidth", bandwidthWGSL, []compute.Binding{
		{Buffer: bufA, ReadOnly: true},
		{Buffer: bufB, ReadOnly: true},
		{Buffer: bufC},
	})
	if err != nil {
		return BandwidthResult{}, err
	}
	defer kernel.Release()

	groups := compute.Workgroups1D(n, workgroupSize)
	bytes := int64(3) * int64(n) * 4

	// Warmup: run once and verify the sums before trusting the timings.
	warmStart := time.Now()
	if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
		return BandwidthResult{}, err
	}
	got, err := compute.ReadBack[float32](c, bufC, n)
	if err != nil {
		return BandwidthResult{}, err
	}
	warmDur := time.Since(warmStart)

	outcome := verify.ValuesFn(got, func(int) float32 { return 3.0 }, verify.Exact())
	if !outcome.OK {
		return BandwidthResult{N: n, Outcome: outcome}, nil
	}

	results := []bench.RunResult{{
		Index:    0,
		Cold:     true,
		Duration: warmDur,
		GBps:     bench.CalcBandwidth(bytes, warmDur),
	}}

	durations := make([]time.Duration, 0, runs)
	for i := 1; i <= runs; i++ {
		start := time.Now()
		if err := compute.Submit(c, compute.Dispatch{Kernel: kernel, X: groups}); err != nil {
			return BandwidthResult{}, err
		}
		c.Device.Poll(true, nil)
		dur := time.Since(start)
		durations = append(durations, dur)
		results = append(results, bench.RunResult{
			Index:    i,
			Duration: dur,
			GBps:     bench.CalcBandwidth(bytes, dur),
		})
	}

	stats := bench.ComputeStats(durations)
	meanGBps := bench.CalcBandwidth(bytes, stats.Mean)

	if opts.JSON {
		bench.FormatJSON(results, stats, out)
	} else {
		fmt.Fprintf(out, "Streaming add over %d elements (%d MiB moved per run)\n",
			n, bytes/(1024*1024))
		bench.FormatTable(results, stats, out)
		fmt.Fprintf(out, "Mean bandwidth: %.2f GB/s\n", meanGBps)
	}

	if err := bench.CheckBandwidthFloor(meanGBps, opts.MinGBps); err != nil {
		return BandwidthResult{}, err
	}

	return BandwidthResult{
		N:        n,
		Runs:     results,
		Stats:    stats,
		MeanGBps: meanGBps,
		Outcome:  outcome,
	}, nil
}
