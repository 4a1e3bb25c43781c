// Package sim implements an in-memory device runtime. Tensors live in host
// byte slices and Execute echoes input tensors onto output tensors in
// catalog order.
//
// The driver exists for tests and for running the orchestrator end to end
// on machines without an accelerator. It honors the same ownership rules as
// real drivers: handles must be released, released handles are dead, and
// the runtime supports one open/close cycle.
package sim

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/born-ml/graphrun/internal/device"
)

func init() {
	device.Register("sim", func(opts ...string) (device.Runtime, error) {
		return New(), nil
	})
}

// Runtime is the in-memory device runtime.
type Runtime struct {
	mu     sync.Mutex
	closed bool
	live   int // currently allocated, unreleased tensors
}

var _ device.Runtime = (*Runtime)(nil)

// New creates a sim runtime.
func New() *Runtime {
	return &Runtime{}
}

// Name returns the driver name.
func (r *Runtime) Name() string {
	return "sim"
}

// LiveTensors returns the number of allocated tensors that have not been
// released yet. Tests use it to verify teardown.
func (r *Runtime) LiveTensors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// AllocateTensor allocates a zeroed host-memory tensor of size bytes.
func (r *Runtime) AllocateTensor(name string, size uint64) (device.Tensor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, device.Errf("tensor_allocate", device.StatusInvalidHandle, "runtime closed")
	}
	r.live++
	return &tensor{rt: r, name: name, data: make([]byte, size)}, nil
}

// LoadModel parses the sim artifact, a JSON manifest describing the model's
// tensor catalog.
func (r *Runtime) LoadModel(data []byte) (device.Model, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, device.Errf("model_load", device.StatusInvalidHandle, "runtime closed")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, device.Errf("model_load", device.StatusInvalid, "parsing manifest: %v", err)
	}
	catalog, err := m.Catalog()
	if err != nil {
		return nil, device.Errf("model_load", device.StatusInvalid, "%v", err)
	}
	return &model{name: m.Name, catalog: catalog}, nil
}

// Close shuts the runtime down. Outstanding tensor handles become dead.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type model struct {
	name     string
	catalog  *device.Catalog
	released bool
}

func (m *model) Catalog() (*device.Catalog, error) {
	if m.released {
		return nil, device.Errf("tensor_info", device.StatusInvalidHandle, "model released")
	}
	return m.catalog, nil
}

// Execute copies the i-th input tensor's bytes onto the i-th output tensor,
// both taken in catalog order. Outputs without a matching input keep their
// current contents.
func (m *model) Execute(inputs, outputs map[string]device.Tensor) error {
	if m.released {
		return device.Errf("execute", device.StatusInvalidHandle, "model released")
	}

	var in, out []device.Tensor
	for i := 0; i < m.catalog.Len(); i++ {
		info := m.catalog.At(i)
		switch info.Usage {
		case device.Input:
			if t, ok := inputs[info.Name]; ok {
				in = append(in, t)
			}
		case device.Output:
			if t, ok := outputs[info.Name]; ok {
				out = append(out, t)
			}
		}
	}

	for i, dst := range out {
		if i >= len(in) {
			break
		}
		src := in[i]
		n := src.Size()
		if dst.Size() < n {
			n = dst.Size()
		}
		buf := make([]byte, n)
		if err := src.Read(buf, 0); err != nil {
			return fmt.Errorf("sim: reading input %q: %w", src.Name(), err)
		}
		if err := dst.Write(buf, 0); err != nil {
			return fmt.Errorf("sim: writing output %q: %w", dst.Name(), err)
		}
	}
	return nil
}

func (m *model) DebugIR() string {
	return ""
}

func (m *model) Release() error {
	m.released = true
	return nil
}

type tensor struct {
	rt       *Runtime
	name     string
	data     []byte
	released bool
}

func (t *tensor) Name() string {
	return t.name
}

func (t *tensor) Size() uint64 {
	return uint64(len(t.data))
}

func (t *tensor) Read(p []byte, offset uint64) error {
	if t.released {
		return device.Errf("tensor_read", device.StatusInvalidHandle, "tensor %q released", t.name)
	}
	if offset+uint64(len(p)) > uint64(len(t.data)) {
		return device.Errf("tensor_read", device.StatusInvalid,
			"read of %d bytes at offset %d exceeds tensor %q (%d bytes)", len(p), offset, t.name, len(t.data))
	}
	copy(p, t.data[offset:])
	return nil
}

func (t *tensor) Write(p []byte, offset uint64) error {
	if t.released {
		return device.Errf("tensor_write", device.StatusInvalidHandle, "tensor %q released", t.name)
	}
	if offset+uint64(len(p)) > uint64(len(t.data)) {
		return device.Errf("tensor_write", device.StatusInvalid,
			"write of %d bytes at offset %d exceeds tensor %q (%d bytes)", len(p), offset, t.name, len(t.data))
	}
	copy(t.data[offset:], p)
	return nil
}

func (t *tensor) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	t.rt.mu.Lock()
	t.rt.live--
	t.rt.mu.Unlock()
	return nil
}
