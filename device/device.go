// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device provides the public API for the accelerator runtime
// boundary: tensor catalogs, device tensor handles, and driver selection.
//
// Drivers register themselves on import:
//
//	import (
//	    "github.com/born-ml/graphrun/device"
//	    _ "github.com/born-ml/graphrun/driver/sim"
//	)
//
//	func main() {
//	    rt, err := device.Open("sim")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer rt.Close()
//	}
package device

import (
	internaldevice "github.com/born-ml/graphrun/internal/device"
)

// Runtime is one initialized accelerator runtime.
type Runtime = internaldevice.Runtime

// Model is a loaded computation graph.
type Model = internaldevice.Model

// Tensor is a handle to device-resident memory.
type Tensor = internaldevice.Tensor

// TensorInfo describes one tensor a model requires.
type TensorInfo = internaldevice.TensorInfo

// Catalog is the ordered tensor description of one loaded model.
type Catalog = internaldevice.Catalog

// DType identifies a tensor element type.
type DType = internaldevice.DType

// Data type constants.
const (
	Float32 DType = internaldevice.Float32
	UInt8   DType = internaldevice.UInt8
)

// Usage marks whether a tensor is a model input or output.
type Usage = internaldevice.Usage

// Usage constants.
const (
	Input  Usage = internaldevice.Input
	Output Usage = internaldevice.Output
)

// Status is a device-runtime status code.
type Status = internaldevice.Status

// Status constants.
const (
	StatusOK            Status = internaldevice.StatusOK
	StatusFailure       Status = internaldevice.StatusFailure
	StatusInvalid       Status = internaldevice.StatusInvalid
	StatusInvalidHandle Status = internaldevice.StatusInvalidHandle
	StatusResource      Status = internaldevice.StatusResource
	StatusHardware      Status = internaldevice.StatusHardware
	StatusUnsupported   Status = internaldevice.StatusUnsupported
)

// StatusError carries a runtime status code across the capability boundary.
type StatusError = internaldevice.StatusError

// ErrRuntimeFinalized reports that the runtime for a driver has already
// been closed in this process and cannot be initialized again. This is a
// known limitation of the native runtimes; do not retry.
var ErrRuntimeFinalized = internaldevice.ErrRuntimeFinalized

// NewCatalog builds a validated catalog from entries.
func NewCatalog(entries []TensorInfo) (*Catalog, error) {
	return internaldevice.NewCatalog(entries)
}

// Open initializes the named driver's runtime.
func Open(name string, opts ...string) (Runtime, error) {
	return internaldevice.Open(name, opts...)
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	return internaldevice.Drivers()
}

// StatusOf extracts the status code from an error chain.
func StatusOf(err error) Status {
	return internaldevice.StatusOf(err)
}
