// Package device defines the capability boundary to a native accelerator
// runtime: loading a compiled graph artifact, allocating device-resident
// tensors, reading and writing their bytes, and executing the graph.
//
// The runtime itself is opaque. Concrete drivers (webgpu, sim) register
// themselves with this package and are selected by name via Open.
package device

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Runtime is one initialized accelerator runtime.
//
// A Runtime is process-scoped: the native runtimes this package fronts
// support exactly one initialize/close cycle per process. Open enforces
// that contract; see ErrRuntimeFinalized.
type Runtime interface {
	// Name returns the driver name this runtime was opened as.
	Name() string

	// LoadModel hands the raw artifact bytes to the runtime and returns a
	// handle to the loaded model. The artifact format is driver-specific
	// and opaque to callers.
	LoadModel(data []byte) (Model, error)

	// AllocateTensor allocates size bytes of device-resident memory tagged
	// with the given tensor name. The caller owns the returned handle and
	// must Release it.
	AllocateTensor(name string, size uint64) (Tensor, error)

	// Close shuts the runtime down and releases driver resources. The
	// runtime cannot be reopened afterwards.
	Close() error
}

// Model is a loaded computation graph.
type Model interface {
	// Catalog describes the tensors the model requires, in model order.
	Catalog() (*Catalog, error)

	// Execute runs the graph once, reading from the input tensors and
	// writing to the output tensors. It blocks until the device is done.
	Execute(inputs, outputs map[string]Tensor) error

	// DebugIR returns a human-readable representation of the compiled
	// program, or "" if the driver has none.
	DebugIR() string

	// Release frees the model's device resources.
	Release() error
}

// Tensor is a handle to device-resident memory. Handles are exclusively
// owned; they are never shared or aliased across tensor sets.
type Tensor interface {
	Name() string
	Size() uint64

	// Read copies len(p) bytes of device memory starting at offset into p.
	Read(p []byte, offset uint64) error

	// Write copies p into device memory starting at offset.
	Write(p []byte, offset uint64) error

	// Release frees the device memory. Safe to call once; the handle is
	// dead afterwards.
	Release() error
}

// Factory constructs a runtime for a driver. Options are driver-specific
// configuration strings.
type Factory func(opts ...string) (Runtime, error)

var (
	driversMu sync.Mutex
	drivers   = make(map[string]Factory)
	finalized = make(map[string]bool)
)

// Register makes a driver available under the given name.
// It panics if the name is already taken.
func Register(name string, f Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[name]; ok {
		panic("device: driver already registered: " + name)
	}
	drivers[name] = f
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.Lock()
	defer driversMu.Unlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open initializes the named driver's runtime.
//
// The native runtimes support a single initialize/close cycle per process.
// Once a runtime opened through this package has been closed, Open for the
// same driver fails with ErrRuntimeFinalized. This is a known limitation
// inherited from the device runtime; callers must not retry.
func Open(name string, opts ...string) (Runtime, error) {
	driversMu.Lock()
	factory, ok := drivers[name]
	done := finalized[name]
	driversMu.Unlock()

	if !ok {
		return nil, fmt.Errorf("device: unknown driver %q (registered: %v)", name, Drivers())
	}
	if done {
		return nil, fmt.Errorf("device: driver %q: %w", name, ErrRuntimeFinalized)
	}

	rt, err := factory(opts...)
	if err != nil {
		return nil, fmt.Errorf("device: opening driver %q: %w", name, err)
	}
	return &guardedRuntime{Runtime: rt, driver: name}, nil
}

// guardedRuntime tracks the close-once contract for Open.
type guardedRuntime struct {
	Runtime
	driver string
	closed bool
}

func (g *guardedRuntime) Close() error {
	if g.closed {
		return ErrRuntimeFinalized
	}
	g.closed = true

	driversMu.Lock()
	finalized[g.driver] = true
	driversMu.Unlock()

	return g.Runtime.Close()
}

func (g *guardedRuntime) LoadModel(data []byte) (Model, error) {
	if g.closed {
		return nil, ErrRuntimeFinalized
	}
	return g.Runtime.LoadModel(data)
}

func (g *guardedRuntime) AllocateTensor(name string, size uint64) (Tensor, error) {
	if g.closed {
		return nil, ErrRuntimeFinalized
	}
	return g.Runtime.AllocateTensor(name, size)
}

// ErrRuntimeFinalized reports that the runtime for a driver has already
// been closed in this process and cannot be initialized again.
var ErrRuntimeFinalized = errors.New("device runtime already finalized for this process")
