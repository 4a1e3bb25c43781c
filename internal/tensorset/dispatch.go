package tensorset

import (
	"github.com/born-ml/graphrun/internal/device"
)

// Handler processes one tensor during a Dispatch walk. It receives the
// resolved device handle, the catalog entry, and the Output accumulator for
// that tensor.
//
// The returned proceed flag decides whether dispatch continues with the
// remaining tensors; returning false aborts the whole dispatch and the
// handler's status becomes its result. The returned status reports the
// per-tensor outcome when proceed is true: dispatch folds it with
// first-failure-sticky semantics.
type Handler interface {
	Handle(t device.Tensor, info device.TensorInfo, out *Output) (proceed bool, status device.Status)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(t device.Tensor, info device.TensorInfo, out *Output) (bool, device.Status)

// Handle calls f.
func (f HandlerFunc) Handle(t device.Tensor, info device.TensorInfo, out *Output) (bool, device.Status) {
	return f(t, info, out)
}

// Dispatch walks the catalog in order and invokes handler once per entry
// matching the requested direction, collecting the non-empty Outputs the
// handler produces.
//
// Entries whose name does not resolve to a handle in the set are skipped
// silently: not every declared tensor is necessarily present at runtime.
// An entry with a dtype this package cannot decode aborts with
// ErrUnsupportedDType — the catalog described a tensor this build cannot
// handle, and the run must not continue.
//
// If the handler refuses to proceed, Dispatch returns immediately with the
// handler's status; outputs gathered so far are discarded since the
// handler's explanation is the authoritative result. Otherwise the
// returned status is the first non-OK status any handler invocation
// reported, StatusOK if none did.
func Dispatch(set *Set, catalog *device.Catalog, usage device.Usage, handler Handler) ([]Output, device.Status, error) {
	if set == nil {
		return nil, device.StatusFailure, device.Errf("iterate_tensors", device.StatusFailure, "nil tensor set")
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, device.StatusFailure, device.Errf("iterate_tensors", device.StatusFailure, "empty catalog")
	}

	final := device.StatusOK
	var outputs []Output

	for i := 0; i < catalog.Len(); i++ {
		info := catalog.At(i)
		if info.Usage != usage {
			continue
		}

		t, ok := set.Get(info.Name)
		if !ok {
			continue
		}

		out, err := NewOutput(info)
		if err != nil {
			return nil, device.StatusUnsupported, err
		}

		proceed, status := handler.Handle(t, info, &out)
		if !proceed {
			return nil, status, &device.StatusError{Op: "iterate_tensors", Status: status}
		}

		if !out.Empty() {
			outputs = append(outputs, out)
		}
		if final == device.StatusOK && status != device.StatusOK {
			final = status
		}
	}

	return outputs, final, nil
}
