package compute

import (
	"github.com/openfluke/webgpu/wgpu"
)

// Binding attaches one buffer to the kernel's bind group, in declaration
// order (binding index = slice index).
type Binding struct {
	Buffer   *wgpu.Buffer
	ReadOnly bool
	Uniform  bool
}

// Kernel is a compiled WGSL compute shader with an explicit bind group
// layout, ready to dispatch.
type Kernel struct {
	label     string
	pipeline  *wgpu.ComputePipeline
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
}

// CompileKernel compiles wgsl (entry point "main") and binds the given
// buffers at group 0. The layout is explicit rather than inferred so the
// same shader behaves identically across backends.
func CompileKernel(c *Context, label, wgsl string, bindings []Binding) (*Kernel, error) {
	module, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + "_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, &RuntimeError{Op: "compile shader " + label, Err: err}
	}
	defer module.Release()

	layoutEntries := make([]wgpu.BindGroupLayoutEntry, len(bindings))
	groupEntries := make([]wgpu.BindGroupEntry, len(bindings))
	for i, b := range bindings {
		bufferLayout := wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}
		if b.ReadOnly {
			bufferLayout.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
		if b.Uniform {
			bufferLayout.Type = wgpu.BufferBindingTypeUniform
		}
		layoutEntries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     bufferLayout,
		}
		groupEntries[i] = wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  b.Buffer,
			Size:    b.Buffer.GetSize(),
		}
	}

	layout, err := c.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + "_BGL",
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create bind group layout " + label, Err: err}
	}

	pipelineLayout, err := c.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "_Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create pipeline layout " + label, Err: err}
	}

	pipeline, err := c.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label + "_Pipe",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create pipeline " + label, Err: err}
	}

	bindGroup, err := c.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + "_Bind",
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		pipeline.Release()
		return nil, &RuntimeError{Op: "create bind group " + label, Err: err}
	}

	return &Kernel{
		label:     label,
		pipeline:  pipeline,
		layout:    layout,
		bindGroup: bindGroup,
	}, nil
}

// Rebind replaces the kernel's bound buffers. Used by ping-pong
// iteration schemes that swap role buffers between dispatches.
func (k *Kernel) Rebind(c *Context, bindings []Binding) error {
	entries := make([]wgpu.BindGroupEntry, len(bindings))
	for i, b := range bindings {
		entries[i] = wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  b.Buffer,
			Size:    b.Buffer.GetSize(),
		}
	}
	bindGroup, err := c.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   k.label + "_Bind",
		Layout:  k.layout,
		Entries: entries,
	})
	if err != nil {
		return &RuntimeError{Op: "rebind " + k.label, Err: err}
	}
	if k.bindGroup != nil {
		k.bindGroup.Release()
	}
	k.bindGroup = bindGroup
	return nil
}

// Release frees the pipeline and bind group.
func (k *Kernel) Release() {
	if k.bindGroup != nil {
		k.bindGroup.Release()
	}
	if k.pipeline != nil {
		k.pipeline.Release()
	}
}

// Dispatch describes one compute pass: a kernel and its workgroup grid.
type Dispatch struct {
	Kernel  *Kernel
	X, Y, Z uint32
}

// Submit encodes each dispatch as its own compute pass, in order, and
// submits the batch to the queue. Passes on the same queue execute in
// submission order, so writes from an earlier dispatch are visible to a
// later one.
func Submit(c *Context, dispatches ...Dispatch) error {
	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return &RuntimeError{Op: "create command encoder", Err: err}
	}
	for _, d := range dispatches {
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(d.Kernel.pipeline)
		pass.SetBindGroup(0, d.Kernel.bindGroup, nil)
		z := d.Z
		if z == 0 {
			z = 1
		}
		y := d.Y
		if y == 0 {
			y = 1
		}
		pass.DispatchWorkgroups(d.X, y, z)
		pass.End()
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return &RuntimeError{Op: "finish commands", Err: err}
	}
	c.Queue.Submit(cmd)
	return nil
}

// Workgroups1D rounds totalThreads up to whole workgroups.
func Workgroups1D(totalThreads, workgroupSize int) uint32 {
	return uint32((totalThreads + workgroupSize - 1) / workgroupSize)
}
