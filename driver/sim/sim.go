// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sim registers the in-memory device runtime under the driver name
// "sim". Importing it for side effects makes the driver available to
// device.Open; the package also re-exports the artifact manifest helpers.
package sim

import (
	internalsim "github.com/born-ml/graphrun/internal/device/sim"
)

// Runtime is the in-memory device runtime.
type Runtime = internalsim.Runtime

// Manifest is the sim artifact: a JSON description of a model's tensors.
type Manifest = internalsim.Manifest

// ManifestTensor is one catalog entry in a Manifest.
type ManifestTensor = internalsim.ManifestTensor

// New creates a sim runtime without going through the driver registry.
func New() *Runtime {
	return internalsim.New()
}
