package device

import (
	"errors"
	"fmt"
)

// DType identifies a tensor element type. The set is closed: these are the
// only types the harvest path can decode.
type DType int

const (
	Float32 DType = iota
	UInt8
)

// ElemSize returns the width of one element in bytes.
func (dt DType) ElemSize() int {
	switch dt {
	case Float32:
		return 4
	case UInt8:
		return 1
	default:
		return 0
	}
}

// String returns a human-readable name for the data type.
func (dt DType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case UInt8:
		return "uint8"
	default:
		return fmt.Sprintf("dtype(%d)", int(dt))
	}
}

// Usage marks whether a tensor is a model input or output.
type Usage int

const (
	Input Usage = iota
	Output
)

// Valid reports whether u is one of the two defined directions.
func (u Usage) Valid() bool {
	return u == Input || u == Output
}

// String returns a human-readable name for the usage.
func (u Usage) String() string {
	switch u {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("usage(%d)", int(u))
	}
}

// TensorInfo describes one tensor a model requires: its name, element type,
// byte size, and direction. Entries are immutable once placed in a Catalog.
type TensorInfo struct {
	Name  string
	DType DType
	Size  uint64 // total byte size; always a multiple of DType.ElemSize
	Usage Usage
}

// Elems returns the element count implied by Size and DType.
func (ti TensorInfo) Elems() int {
	return int(ti.Size) / ti.DType.ElemSize()
}

// Catalog is the ordered tensor description of one loaded model. It is
// produced once per model load and is read-only thereafter.
type Catalog struct {
	entries []TensorInfo
	byName  map[string]int
}

// Catalog construction errors.
var (
	ErrEmptyCatalog     = errors.New("catalog has no tensors")
	ErrDuplicateTensor  = errors.New("duplicate tensor name in catalog")
	ErrMisalignedTensor = errors.New("tensor size is not a multiple of its element width")
)

// NewCatalog builds a catalog from entries, validating that names are
// unique and every size is a multiple of its element width.
func NewCatalog(entries []TensorInfo) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	byName := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, ok := byName[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTensor, e.Name)
		}
		if w := e.DType.ElemSize(); w == 0 || e.Size%uint64(w) != 0 {
			return nil, fmt.Errorf("%w: %q (%d bytes, %s)", ErrMisalignedTensor, e.Name, e.Size, e.DType)
		}
		byName[e.Name] = i
	}
	c := &Catalog{
		entries: make([]TensorInfo, len(entries)),
		byName:  byName,
	}
	copy(c.entries, entries)
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at position i.
func (c *Catalog) At(i int) TensorInfo {
	return c.entries[i]
}

// Lookup finds an entry by tensor name.
func (c *Catalog) Lookup(name string) (TensorInfo, bool) {
	i, ok := c.byName[name]
	if !ok {
		return TensorInfo{}, false
	}
	return c.entries[i], true
}

// Count returns how many entries have the given usage.
func (c *Catalog) Count(usage Usage) int {
	n := 0
	for _, e := range c.entries {
		if e.Usage == usage {
			n++
		}
	}
	return n
}
