// Package compute wraps the WebGPU runtime with the small surface the
// tour exercises need: an explicitly constructed device context, storage
// buffer helpers, and a compute kernel wrapper.
package compute

import (
	"fmt"
	"strings"

	"github.com/openfluke/webgpu/wgpu"
)

// PowerPreference selects which adapter class to ask the runtime for.
type PowerPreference string

const (
	PowerAuto PowerPreference = "auto"
	PowerHigh PowerPreference = "high"
	PowerLow  PowerPreference = "low"
)

// Options controls adapter selection. The zero value requests a
// high-performance adapter and falls back to whatever the runtime offers.
type Options struct {
	// AdapterName selects the first adapter whose name or vendor contains
	// this substring (case-insensitive). Empty means no name filter.
	AdapterName string
	Power       PowerPreference
	// ForceFallback accepts a software adapter.
	ForceFallback bool
}

// Context holds the WebGPU instance, adapter, device and queue for one
// run. It is passed explicitly to everything that touches the device;
// there is no process-wide default. Not safe for concurrent use.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// New creates a context, selecting an adapter per opts. The caller owns
// the context and must Release it.
func New(opts Options) (*Context, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, &RuntimeError{Op: "create instance", Err: fmt.Errorf("wgpu.CreateInstance returned nil")}
	}

	adapter, err := selectAdapter(instance, opts)
	if err != nil {
		instance.Release()
		return nil, err
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, &RuntimeError{Op: "request device", Err: err}
	}

	return &Context{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}, nil
}

// selectAdapter walks the name filter first, then the power-preference
// fallback chain: requested preference, then low power, then default.
func selectAdapter(instance *wgpu.Instance, opts Options) (*wgpu.Adapter, error) {
	if opts.AdapterName != "" {
		want := strings.ToLower(opts.AdapterName)
		var chosen *wgpu.Adapter
		for _, a := range instance.EnumerateAdapters(nil) {
			if chosen == nil {
				info := a.GetInfo()
				if strings.Contains(strings.ToLower(info.Name), want) ||
					strings.Contains(strings.ToLower(info.VendorName), want) {
					chosen = a
					continue
				}
			}
			a.Release()
		}
		if chosen == nil {
			return nil, &RuntimeError{Op: "select adapter", Err: fmt.Errorf("no adapter matching %q", opts.AdapterName)}
		}
		return chosen, nil
	}

	var attempts []*wgpu.RequestAdapterOptions
	switch opts.Power {
	case PowerLow:
		attempts = append(attempts, &wgpu.RequestAdapterOptions{
			PowerPreference:      wgpu.PowerPreferenceLowPower,
			ForceFallbackAdapter: opts.ForceFallback,
		})
	default:
		attempts = append(attempts,
			&wgpu.RequestAdapterOptions{
				PowerPreference:      wgpu.PowerPreferenceHighPerformance,
				ForceFallbackAdapter: opts.ForceFallback,
			},
			&wgpu.RequestAdapterOptions{
				PowerPreference:      wgpu.PowerPreferenceLowPower,
				ForceFallbackAdapter: opts.ForceFallback,
			})
	}
	attempts = append(attempts, nil)

	var lastErr error
	for _, req := range attempts {
		adapter, err := instance.RequestAdapter(req)
		if err == nil && adapter != nil {
			return adapter, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	return nil, &RuntimeError{Op: "select adapter", Err: fmt.Errorf("all adapter attempts failed: %v", lastErr)}
}

// DeviceName returns the selected adapter's name for display.
func (c *Context) DeviceName() string {
	info := c.Adapter.GetInfo()
	return strings.TrimSpace(info.Name)
}

// Release tears down the queue, device, adapter and instance.
func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
	}
	if c.Device != nil {
		c.Device.Release()
	}
	if c.Adapter != nil {
		c.Adapter.Release()
	}
	if c.Instance != nil {
		c.Instance.Release()
	}
}
