package webgpu

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/graphrun/internal/device"
)

// Artifact format constants. A webgpu artifact is the magic, a format
// version, a length-prefixed JSON tensor manifest, and the WGSL compute
// source for the rest of the blob.
const (
	MagicBytes    = "GRPH"
	FormatVersion = 1
)

// Artifact parse errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported artifact version")
	ErrTruncatedArtifact  = errors.New("artifact truncated")
)

// manifest is the JSON header of a webgpu artifact.
type manifest struct {
	Name       string           `json:"name"`
	EntryPoint string           `json:"entry_point"`
	Workgroups [3]uint32        `json:"workgroups"`
	Tensors    []manifestTensor `json:"tensors"`
}

type manifestTensor struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Size  uint64 `json:"size"`
	Usage string `json:"usage"`
}

type model struct {
	rt       *Runtime
	name     string
	source   string // WGSL compute source
	catalog  *device.Catalog
	pipeline *wgpu.ComputePipeline
	shader   *wgpu.ShaderModule
	groups   [3]uint32
	released bool
}

var _ device.Model = (*model)(nil)

// LoadModel parses the artifact, compiles its WGSL source and builds the
// compute pipeline.
func (r *Runtime) LoadModel(data []byte) (device.Model, error) {
	if r.closed {
		return nil, device.Errf("model_load", device.StatusInvalidHandle, "runtime closed")
	}

	m, source, err := parseArtifact(data)
	if err != nil {
		return nil, device.Errf("model_load", device.StatusInvalid, "%v", err)
	}
	catalog, err := m.catalog()
	if err != nil {
		return nil, device.Errf("model_load", device.StatusInvalid, "%v", err)
	}

	entry := m.EntryPoint
	if entry == "" {
		entry = "main"
	}
	groups := m.Workgroups
	if groups == [3]uint32{} {
		groups = [3]uint32{1, 1, 1}
	}

	shader := r.device.CreateShaderModuleWGSL(source)
	if shader == nil {
		return nil, device.Errf("model_load", device.StatusFailure, "compiling WGSL for model %q", m.Name)
	}
	pipeline := r.device.CreateComputePipelineSimple(nil, shader, entry)
	if pipeline == nil {
		shader.Release()
		return nil, device.Errf("model_load", device.StatusFailure,
			"creating compute pipeline for model %q entry %q", m.Name, entry)
	}

	return &model{
		rt:       r,
		name:     m.Name,
		source:   source,
		catalog:  catalog,
		pipeline: pipeline,
		shader:   shader,
		groups:   groups,
	}, nil
}

// parseArtifact splits artifact bytes into manifest and WGSL source.
func parseArtifact(data []byte) (*manifest, string, error) {
	if len(data) < len(MagicBytes)+8 {
		return nil, "", ErrTruncatedArtifact
	}
	if string(data[:4]) != MagicBytes {
		return nil, "", ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return nil, "", fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	headerLen := binary.LittleEndian.Uint32(data[8:12])
	if uint64(12)+uint64(headerLen) > uint64(len(data)) {
		return nil, "", fmt.Errorf("%w: header of %d bytes", ErrTruncatedArtifact, headerLen)
	}

	var m manifest
	if err := json.Unmarshal(data[12:12+headerLen], &m); err != nil {
		return nil, "", fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, string(data[12+headerLen:]), nil
}

func (m *manifest) catalog() (*device.Catalog, error) {
	entries := make([]device.TensorInfo, 0, len(m.Tensors))
	for _, t := range m.Tensors {
		var dt device.DType
		switch t.DType {
		case "float32":
			dt = device.Float32
		case "uint8":
			dt = device.UInt8
		default:
			return nil, fmt.Errorf("manifest tensor %q: unknown dtype %q", t.Name, t.DType)
		}
		var usage device.Usage
		switch t.Usage {
		case "input":
			usage = device.Input
		case "output":
			usage = device.Output
		default:
			return nil, fmt.Errorf("manifest tensor %q: unknown usage %q", t.Name, t.Usage)
		}
		entries = append(entries, device.TensorInfo{Name: t.Name, DType: dt, Size: t.Size, Usage: usage})
	}
	return device.NewCatalog(entries)
}

func (m *model) Catalog() (*device.Catalog, error) {
	if m.released {
		return nil, device.Errf("tensor_info", device.StatusInvalidHandle, "model released")
	}
	return m.catalog, nil
}

// Execute binds the tensors of both sets in catalog order and dispatches
// the compute shader once.
func (m *model) Execute(inputs, outputs map[string]device.Tensor) error {
	if m.released {
		return device.Errf("execute", device.StatusInvalidHandle, "model released")
	}

	var entries []wgpu.BindGroupEntry
	binding := uint32(0)
	for i := 0; i < m.catalog.Len(); i++ {
		info := m.catalog.At(i)
		set := inputs
		if info.Usage == device.Output {
			set = outputs
		}
		dt, ok := set[info.Name]
		if !ok {
			return device.Errf("execute", device.StatusInvalidHandle,
				"%s tensor %q not present in tensor set", info.Usage, info.Name)
		}
		wt, ok := dt.(*tensor)
		if !ok {
			return device.Errf("execute", device.StatusInvalid,
				"tensor %q was not allocated by the webgpu runtime", info.Name)
		}
		entries = append(entries, wgpu.BufferBindingEntry(binding, wt.buffer, 0, info.Size))
		binding++
	}

	bindGroupLayout := m.pipeline.GetBindGroupLayout(0)
	bindGroup := m.rt.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := m.rt.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(m.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(m.groups[0], m.groups[1], m.groups[2])
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	m.rt.queue.Submit(cmdBuffer)

	return nil
}

// DebugIR returns the model's WGSL source.
func (m *model) DebugIR() string {
	return m.source
}

// Release frees the pipeline and shader module.
func (m *model) Release() error {
	if m.released {
		return nil
	}
	m.released = true
	m.pipeline.Release()
	m.shader.Release()
	return nil
}
