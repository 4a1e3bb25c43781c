// Package tensorset implements the device tensor-set lifecycle: allocating
// a named collection of device-resident tensors for one I/O direction,
// marshalling host values into it, and dispatching per-tensor handlers over
// it to harvest results.
//
// A Set owns its device handles. Release frees every handle and is safe on
// every exit path, including after a partial allocation failure.
package tensorset

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/device"
)

// Set is a named collection of device tensor handles allocated for one
// direction. Exactly one Set exists per direction per run.
type Set struct {
	usage    device.Usage
	order    []string
	tensors  map[string]device.Tensor
	released bool
}

// Usage returns the direction the set was allocated for.
func (s *Set) Usage() device.Usage {
	return s.usage
}

// Len returns the number of tensors in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Get resolves a tensor handle by name.
func (s *Set) Get(name string) (device.Tensor, bool) {
	t, ok := s.tensors[name]
	return t, ok
}

// Tensors returns the name-to-handle map for handing the set to Execute.
// The map is owned by the set; callers must not mutate it.
func (s *Set) Tensors() map[string]device.Tensor {
	return s.tensors
}

// Release frees every device handle in the set. It keeps going past
// individual release failures and returns the first one. Calling Release
// again is a no-op; the set is dead afterwards.
func (s *Set) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true

	var first error
	for _, name := range s.order {
		if err := s.tensors[name].Release(); err != nil && first == nil {
			first = fmt.Errorf("releasing tensor %q: %w", name, err)
		}
	}
	return first
}

// Allocate creates a device tensor for every catalog entry whose usage
// matches the requested direction and registers it in a new Set.
//
// On failure the partially allocated Set is returned alongside the error.
// Allocate does not roll it back; the caller owns the partial set and must
// Release it, or the device handles allocated so far leak.
func Allocate(rt device.Runtime, catalog *device.Catalog, usage device.Usage) (*Set, error) {
	if !usage.Valid() {
		return nil, device.Errf("allocate_tensors", device.StatusInvalid, "invalid usage %s", usage)
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, device.Errf("allocate_tensors", device.StatusInvalid, "empty catalog")
	}

	set := &Set{
		usage:   usage,
		tensors: make(map[string]device.Tensor),
	}
	for i := 0; i < catalog.Len(); i++ {
		info := catalog.At(i)
		if info.Usage != usage {
			continue
		}
		t, err := rt.AllocateTensor(info.Name, info.Size)
		if err != nil {
			return set, fmt.Errorf("allocating %s tensor %q (%d bytes): %w", usage, info.Name, info.Size, err)
		}
		set.order = append(set.order, info.Name)
		set.tensors[info.Name] = t
	}
	return set, nil
}
