package sim

import (
	"encoding/json"
	"fmt"

	"github.com/born-ml/graphrun/internal/device"
)

// Manifest is the sim artifact: a JSON description of the model's tensor
// catalog. Real drivers parse their native artifact formats; sim keeps the
// catalog explicit so tests and examples can build models by hand.
type Manifest struct {
	Name    string           `json:"name"`
	Tensors []ManifestTensor `json:"tensors"`
}

// ManifestTensor is one catalog entry in a Manifest.
type ManifestTensor struct {
	Name  string `json:"name"`
	DType string `json:"dtype"` // "float32" or "uint8"
	Size  uint64 `json:"size"`  // byte size
	Usage string `json:"usage"` // "input" or "output"
}

// Encode serializes the manifest into artifact bytes.
func (m Manifest) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Catalog converts the manifest into a validated device catalog.
func (m Manifest) Catalog() (*device.Catalog, error) {
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

// ManifestFor builds a Manifest from catalog entries. Tests use it to
// produce artifacts without writing JSON by hand.
func ManifestFor(name string, entries []device.TensorInfo) Manifest {
	m := Manifest{Name: name}
	for _, e := range entries {
		m.Tensors = append(m.Tensors, ManifestTensor{
			Name:  e.Name,
			DType: e.DType.String(),
			Size:  e.Size,
			Usage: e.Usage.String(),
		})
	}
	return m
}
