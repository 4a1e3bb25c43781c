package tensorset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/graphrun/internal/device"
)

// ErrUnsupportedDType reports a catalog entry whose element type this
// package cannot decode. A well-formed model never produces it; hitting it
// means the catalog and this build disagree, which is fatal for the run.
var ErrUnsupportedDType = errors.New("unsupported tensor dtype")

// Output is a host-side decoded tensor value. It is a closed tagged
// variant: float32 tensors decode to a float32 sequence, uint8 tensors to
// a bool sequence (nonzero byte means true). The variant is fixed at
// construction and must match the dtype of every decode into it.
type Output struct {
	dtype  device.DType
	floats []float32
	bools  []bool
}

// NewOutput constructs an empty accumulator for the given tensor entry,
// pre-sized to the element count its dtype implies.
func NewOutput(info device.TensorInfo) (Output, error) {
	switch info.DType {
	case device.Float32:
		return Output{dtype: device.Float32, floats: make([]float32, 0, info.Size/4)}, nil
	case device.UInt8:
		return Output{dtype: device.UInt8, bools: make([]bool, 0, info.Size)}, nil
	default:
		return Output{}, fmt.Errorf("%w: %s", ErrUnsupportedDType, info.DType)
	}
}

// DType returns the variant tag.
func (o *Output) DType() device.DType {
	return o.dtype
}

// Float32 returns the decoded float32 sequence. Nil for the bool variant.
func (o *Output) Float32() []float32 {
	return o.floats
}

// Bool returns the decoded bool sequence. Nil for the float32 variant.
func (o *Output) Bool() []bool {
	return o.bools
}

// Empty reports whether anything has been decoded into the accumulator.
func (o *Output) Empty() bool {
	return len(o.floats) == 0 && len(o.bools) == 0
}

// Decode appends the tensor bytes in raw to the accumulator, interpreting
// them according to info's dtype. A dtype that does not match the
// accumulator's variant is a hard mismatch error; nothing is appended.
func (o *Output) Decode(info device.TensorInfo, raw []byte) error {
	if info.DType != o.dtype {
		return device.Errf("decode_output", device.StatusFailure,
			"tensor %q: dtype %s does not match accumulator variant %s", info.Name, info.DType, o.dtype)
	}
	switch o.dtype {
	case device.Float32:
		for i := 0; i+4 <= len(raw); i += 4 {
			o.floats = append(o.floats, math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
		}
	case device.UInt8:
		for _, b := range raw {
			o.bools = append(o.bools, b != 0)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDType, o.dtype)
	}
	return nil
}
