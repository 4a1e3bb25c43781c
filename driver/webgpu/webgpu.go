// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu registers the WebGPU device runtime under the driver name
// "webgpu". Importing it for side effects makes the driver available to
// device.Open.
//
// The driver needs the wgpu_native library at runtime; use IsAvailable to
// probe before opening.
package webgpu

import (
	internalwebgpu "github.com/born-ml/graphrun/internal/device/webgpu"
)

// Runtime is the WebGPU device runtime.
type Runtime = internalwebgpu.Runtime

// New acquires a GPU adapter, device and queue without going through the
// driver registry.
func New() (*Runtime, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
