// Package webgpu implements the device runtime on WebGPU. Uses go-webgpu
// (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Device tensors are GPU storage buffers. The artifact carries a tensor
// manifest plus WGSL compute source; Execute binds the tensors of both
// sets in catalog order and dispatches the shader.
package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/graphrun/internal/device"
)

func init() {
	device.Register("webgpu", func(opts ...string) (device.Runtime, error) {
		return New()
	})
}

// Runtime is the WebGPU device runtime.
type Runtime struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	adapterInfo *wgpu.AdapterInfoGo

	// Staging buffers for tensor read-back are recycled through the pool.
	stagingPool *BufferPool

	closed bool
}

var _ device.Runtime = (*Runtime)(nil)

// New acquires a GPU adapter, device and queue.
// Returns an error if WebGPU is not available or initialization fails.
func New() (rt *Runtime, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			rt = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo, _ := adapter.GetInfo()

	dev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Runtime{
		instance:    instance,
		adapter:     adapter,
		device:      dev,
		queue:       queue,
		adapterInfo: adapterInfo,
		stagingPool: NewBufferPool(dev),
	}, nil
}

// Name returns the driver name.
func (r *Runtime) Name() string {
	return "webgpu"
}

// AdapterName returns a human-readable description of the GPU adapter.
func (r *Runtime) AdapterName() string {
	if r.adapterInfo != nil {
		return fmt.Sprintf("%s %s", r.adapterInfo.Device, r.adapterInfo.Vendor)
	}
	return "unknown adapter"
}

// AllocateTensor allocates a device-resident storage buffer of size bytes.
func (r *Runtime) AllocateTensor(name string, size uint64) (device.Tensor, error) {
	if r.closed {
		return nil, device.Errf("tensor_allocate", device.StatusInvalidHandle, "runtime closed")
	}
	// Storage buffers must also be copy targets/sources for host I/O.
	buffer := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if buffer == nil {
		return nil, device.Errf("tensor_allocate", device.StatusResource,
			"allocating %d bytes for tensor %q", size, name)
	}
	return &tensor{rt: r, name: name, size: size, buffer: buffer}, nil
}

// Close releases all WebGPU resources. The runtime cannot be reopened.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if r.stagingPool != nil {
		r.stagingPool.Clear()
		r.stagingPool = nil
	}
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
	return nil
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}
