package compute

import (
	"fmt"
	"time"

	"github.com/openfluke/webgpu/wgpu"
)

// Scalar covers the 4-byte element types the exercises move through
// storage buffers.
type Scalar interface {
	~int32 | ~uint32 | ~float32
}

const scalarBytes = 4

// readbackTimeout bounds the poll loop in ReadBack. Mapping a staging
// buffer should complete in milliseconds; a stall this long means the
// device hung.
const readbackTimeout = 2 * time.Second

// NewBuffer creates a storage buffer initialized with data.
func NewBuffer[T Scalar](c *Context, label string, data []T) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create buffer " + label, Err: err}
	}
	return buf, nil
}

// NewEmptyBuffer creates a zero-initialized storage buffer of elems
// 4-byte scalars.
func NewEmptyBuffer(c *Context, label string, elems int) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(elems * scalarBytes),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create buffer " + label, Err: err}
	}
	return buf, nil
}

// NewUniformBuffer creates a uniform buffer initialized with data.
func NewUniformBuffer[T Scalar](c *Context, label string, data []T) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create uniform " + label, Err: err}
	}
	return buf, nil
}

// WriteBuffer uploads data into an existing buffer at offset 0.
func WriteBuffer[T Scalar](c *Context, buf *wgpu.Buffer, data []T) {
	c.Queue.WriteBuffer(buf, 0, wgpu.ToBytes(data))
}

// ReadBack copies elems scalars out of a device buffer through a MapRead
// staging buffer and blocks until the mapping completes. The returned
// slice is host-owned; by the time it is handed back, every device write
// submitted before the copy is visible in it.
func ReadBack[T Scalar](c *Context, buffer *wgpu.Buffer, elems int) ([]T, error) {
	sizeBytes := uint64(elems * scalarBytes)
	staging, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ReadStaging",
		Size:  sizeBytes,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, &RuntimeError{Op: "create staging buffer", Err: err}
	}
	defer staging.Destroy()

	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, &RuntimeError{Op: "create command encoder", Err: err}
	}
	encoder.CopyBufferToBuffer(buffer, 0, staging, 0, sizeBytes)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, &RuntimeError{Op: "finish readback commands", Err: err}
	}
	c.Queue.Submit(cmd)

	done := make(chan struct{})
	var mapErr error
	err = staging.MapAsync(wgpu.MapModeRead, 0, sizeBytes, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("map failed: %v", status)
		}
		close(done)
	})
	if err != nil {
		return nil, &RuntimeError{Op: "map staging buffer", Err: err}
	}

	timeout := time.After(readbackTimeout)
poll:
	for {
		c.Device.Poll(false, nil)
		select {
		case <-done:
			break poll
		case <-timeout:
			return nil, &RuntimeError{Op: "map staging buffer", Err: fmt.Errorf("timed out after %v", readbackTimeout)}
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if mapErr != nil {
		return nil, &RuntimeError{Op: "map staging buffer", Err: mapErr}
	}

	mapped := staging.GetMappedRange(0, uint(sizeBytes))
	if mapped == nil {
		return nil, &RuntimeError{Op: "map staging buffer", Err: fmt.Errorf("GetMappedRange returned nil")}
	}
	result := make([]T, elems)
	copy(result, wgpu.FromBytes[T](mapped))
	staging.Unmap()

	return result, nil
}
