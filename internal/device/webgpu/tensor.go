package webgpu

import (
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/graphrun/internal/device"
)

// tensor is a device-resident storage buffer.
type tensor struct {
	rt       *Runtime
	name     string
	size     uint64
	buffer   *wgpu.Buffer
	released bool
}

var _ device.Tensor = (*tensor)(nil)

func (t *tensor) Name() string {
	return t.name
}

func (t *tensor) Size() uint64 {
	return t.size
}

// Read copies device bytes into p through a pooled staging buffer, since
// storage buffers cannot be mapped directly.
func (t *tensor) Read(p []byte, offset uint64) error {
	if t.released {
		return device.Errf("tensor_read", device.StatusInvalidHandle, "tensor %q released", t.name)
	}
	size := uint64(len(p))
	if offset+size > t.size {
		return device.Errf("tensor_read", device.StatusInvalid,
			"read of %d bytes at offset %d exceeds tensor %q (%d bytes)", size, offset, t.name, t.size)
	}

	staging := t.rt.stagingPool.Acquire(size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	defer t.rt.stagingPool.Release(staging, size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)

	encoder := t.rt.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(t.buffer, offset, staging, 0, size)
	cmdBuffer := encoder.Finish(nil)
	t.rt.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(t.rt.device, wgpu.MapModeRead, 0, size); err != nil {
		return device.Errf("tensor_read", device.StatusHardware, "mapping staging buffer: %v", err)
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(p, mappedSlice)
	staging.Unmap()

	return nil
}

// Write copies p into device memory at offset via the queue.
func (t *tensor) Write(p []byte, offset uint64) error {
	if t.released {
		return device.Errf("tensor_write", device.StatusInvalidHandle, "tensor %q released", t.name)
	}
	size := uint64(len(p))
	if offset+size > t.size {
		return device.Errf("tensor_write", device.StatusInvalid,
			"write of %d bytes at offset %d exceeds tensor %q (%d bytes)", size, offset, t.name, t.size)
	}

	// Upload through a buffer mapped at creation, then copy on-device.
	staging := t.rt.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, p)
	staging.Unmap()

	encoder := t.rt.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, t.buffer, offset, size)
	cmdBuffer := encoder.Finish(nil)
	t.rt.queue.Submit(cmdBuffer)

	return nil
}

// Release frees the device buffer.
func (t *tensor) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	t.buffer.Release()
	t.buffer = nil
	return nil
}
