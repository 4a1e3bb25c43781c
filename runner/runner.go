// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package runner provides the public API for executing compiled graph
// artifacts on an accelerator.
//
// Example:
//
//	import (
//	    "github.com/born-ml/graphrun/runner"
//	    _ "github.com/born-ml/graphrun/driver/sim"
//	)
//
//	func main() {
//	    ctx, err := runner.NewContext("sim", log.Logger)
//	    if err != nil {
//	        log.Fatal().Err(err).Send()
//	    }
//	    defer ctx.Close()
//
//	    r := ctx.Runner(runner.Options{OutputDir: "out"})
//	    res, err := r.Run(context.Background(), runner.Request{
//	        Artifact:    "model.grph",
//	        Name:        "demo",
//	        InputNames:  []string{"x"},
//	        Inputs:      [][]float32{{2.5}},
//	        InputShapes: [][]uint64{{1}},
//	    })
//	}
package runner

import (
	"github.com/rs/zerolog"

	internalrunner "github.com/born-ml/graphrun/internal/runner"
	"github.com/born-ml/graphrun/internal/tensorset"
)

// Context is the process-wide handle to an initialized device runtime.
// At most one initialize/close cycle per driver per process is supported.
type Context = internalrunner.Context

// Runner executes runs against one open device runtime.
type Runner = internalrunner.Runner

// Request describes one run.
type Request = internalrunner.Request

// RunResult is the outcome of one run: decoded outputs, optional debug
// text, and execute-only duration.
type RunResult = internalrunner.RunResult

// Options configures a Runner.
type Options = internalrunner.Options

// Output is a host-side decoded tensor value: a float32 sequence or a
// bool sequence, depending on the tensor's dtype.
type Output = tensorset.Output

// NewContext initializes the named driver and returns the process handle.
func NewContext(driver string, log zerolog.Logger, opts ...string) (*Context, error) {
	return internalrunner.NewContext(driver, log, opts...)
}

// New creates a Runner on top of an open runtime.
var New = internalrunner.New
