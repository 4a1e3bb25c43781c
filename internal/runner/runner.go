// Package runner sequences one run of a compiled graph on an accelerator:
// artifact fetch, model load, tensor-set allocation, input marshalling,
// execution, output harvest, and teardown.
//
// Every device-runtime call is fail-fast: a non-OK status aborts the run
// and is surfaced to the caller; nothing is retried. Teardown of both
// tensor sets and the model runs on every exit path once the resources
// exist, including error paths.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/born-ml/graphrun/internal/artifact"
	"github.com/born-ml/graphrun/internal/device"
	"github.com/born-ml/graphrun/internal/tensorset"
)

// Request describes one run.
type Request struct {
	// Artifact is the compiled graph reference: a local path or a gs://
	// object. The blob is read in full before being handed to the device
	// runtime.
	Artifact string

	// Name labels the run in logs and errors.
	Name string

	// InputNames, Inputs and InputShapes are parallel slices describing
	// the host-side input values. All three must have the same length.
	// They may all be empty: execution still proceeds using whatever
	// default device state the input tensors hold.
	InputNames  []string
	Inputs      [][]float32
	InputShapes [][]uint64
}

// RunResult is the outcome of one successful (or partially harvested) run.
// It is immutable once returned.
type RunResult struct {
	// Outputs holds the decoded output tensors in catalog order.
	Outputs []tensorset.Output

	// DebugIR is a human-readable representation of the compiled program,
	// when the driver can produce one.
	DebugIR string

	// Runtime is the execute-call latency only. Artifact reading, tensor
	// allocation, input marshalling and output harvesting are excluded.
	Runtime time.Duration
}

// Options configures a Runner.
type Options struct {
	// OutputDir receives the per-tensor .out files written during harvest.
	// Empty means the working directory.
	OutputDir string

	// Source fetches artifacts. Defaults to artifact.Default().
	Source artifact.Source

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Runner executes runs against one open device runtime. It is not safe for
// concurrent use: the underlying runtimes are single-threaded and every
// device call blocks until the device responds.
type Runner struct {
	rt     device.Runtime
	source artifact.Source
	outDir string
	log    zerolog.Logger
}

// New creates a Runner on top of an open runtime.
func New(rt device.Runtime, opts Options) *Runner {
	src := opts.Source
	if src == nil {
		src = artifact.Default()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Runner{
		rt:     rt,
		source: src,
		outDir: opts.OutputDir,
		log:    log,
	}
}

// Run executes the artifact once.
//
// Contract violations (mismatched input slice lengths, input shapes that
// disagree with the catalog) are rejected before any device interaction.
// Device failures abort the run. Per-tensor harvest failures do not: Run
// then returns the partial RunResult together with an error carrying the
// first failure status, so one tensor's problem does not discard the rest.
func (r *Runner) Run(ctx context.Context, req Request) (*RunResult, error) {
	if len(req.InputNames) != len(req.Inputs) || len(req.Inputs) != len(req.InputShapes) {
		return nil, device.Errf("run", device.StatusInvalid,
			"input names, values and shapes must be parallel: %d/%d/%d",
			len(req.InputNames), len(req.Inputs), len(req.InputShapes))
	}

	data, err := r.source.Fetch(ctx, req.Artifact)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", req.Name, err)
	}
	r.log.Debug().Str("run", req.Name).Str("artifact", req.Artifact).Int("bytes", len(data)).
		Msg("artifact read")

	model, err := r.rt.LoadModel(data)
	if err != nil {
		return nil, fmt.Errorf("run %q: loading model: %w", req.Name, err)
	}
	defer model.Release()

	catalog, err := model.Catalog()
	if err != nil {
		return nil, fmt.Errorf("run %q: reading tensor catalog: %w", req.Name, err)
	}
	if err := checkShapes(catalog, req); err != nil {
		return nil, fmt.Errorf("run %q: %w", req.Name, err)
	}

	inputs, err := tensorset.Allocate(r.rt, catalog, device.Input)
	defer inputs.Release()
	if err != nil {
		return nil, fmt.Errorf("run %q: allocating input tensors: %w", req.Name, err)
	}

	outputs, err := tensorset.Allocate(r.rt, catalog, device.Output)
	defer outputs.Release()
	if err != nil {
		return nil, fmt.Errorf("run %q: allocating output tensors: %w", req.Name, err)
	}
	r.log.Debug().Str("run", req.Name).Int("inputs", inputs.Len()).Int("outputs", outputs.Len()).
		Msg("tensor sets allocated")

	// Uninitialized inputs are not an error: with no host values supplied
	// the graph runs on whatever state the input tensors hold.
	if len(req.Inputs) > 0 {
		if err := tensorset.LoadValues(inputs, catalog, device.Input, req.Inputs); err != nil {
			return nil, fmt.Errorf("run %q: loading input values: %w", req.Name, err)
		}
	}

	start := time.Now()
	err = model.Execute(inputs.Tensors(), outputs.Tensors())
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("run %q: executing: %w", req.Name, err)
	}
	r.log.Info().Str("run", req.Name).Dur("runtime", elapsed).Msg("graph executed")

	handler := &tensorset.SaveOutputs{Dir: r.outDir, Log: r.log}
	decoded, status, err := tensorset.Dispatch(outputs, catalog, device.Output, handler)
	if err != nil {
		return nil, fmt.Errorf("run %q: harvesting outputs: %w", req.Name, err)
	}

	result := &RunResult{
		Outputs: decoded,
		DebugIR: model.DebugIR(),
		Runtime: elapsed,
	}
	if status != device.StatusOK {
		// Partial harvest: hand back what was gathered plus the first
		// failure, rather than discarding everything.
		return result, &device.StatusError{Op: "harvest", Status: status}
	}
	return result, nil
}

// checkShapes cross-checks declared input shapes against the catalog:
// the element count a shape implies must match the byte size of the tensor
// it names. Names that are not in the catalog or empty shapes are left to
// the loader's own validation.
func checkShapes(catalog *device.Catalog, req Request) error {
	for i, name := range req.InputNames {
		shape := req.InputShapes[i]
		if len(shape) == 0 {
			continue
		}
		info, ok := catalog.Lookup(name)
		if !ok {
			continue
		}
		elems := uint64(1)
		for _, d := range shape {
			elems *= d
		}
		if want := uint64(info.Elems()); elems != want {
			return device.Errf("run", device.StatusInvalid,
				"input %q: shape %v implies %d elements, catalog declares %d", name, shape, elems, want)
		}
	}
	return nil
}
