package tensorset

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphrun/internal/device"
	"github.com/born-ml/graphrun/internal/device/sim"
)

func loadFixture(t *testing.T) (*sim.Runtime, *device.Catalog, *Set) {
	t.Helper()
	rt := sim.New()
	catalog := testCatalog(t, []device.TensorInfo{
		{Name: "x", DType: device.Float32, Size: 4, Usage: device.Input},
		{Name: "y", DType: device.Float32, Size: 8, Usage: device.Input},
		{Name: "z", DType: device.Float32, Size: 4, Usage: device.Output},
	})
	set, err := Allocate(rt, catalog, device.Input)
	require.NoError(t, err)
	t.Cleanup(func() { set.Release() })
	return rt, catalog, set
}

func TestLoadValuesEmptyIsNoop(t *testing.T) {
	_, catalog, set := loadFixture(t)
	assert.NoError(t, LoadValues(set, catalog, device.Input, nil))
}

func TestLoadValuesRejectsInvalidUsage(t *testing.T) {
	_, catalog, set := loadFixture(t)
	err := LoadValues(set, catalog, device.Usage(3), [][]float32{{1}})
	assert.Equal(t, device.StatusInvalid, device.StatusOf(err))
}

func TestLoadValuesLengthMismatchWritesNothing(t *testing.T) {
	_, catalog, set := loadFixture(t)

	// "x" is 4 bytes, so exactly one float32 is expected.
	err := LoadValues(set, catalog, device.Input, [][]float32{{1.0, 2.0}})
	assert.Equal(t, device.StatusInvalid, device.StatusOf(err))

	tensor, ok := set.Get("x")
	require.True(t, ok)
	got := make([]byte, 4)
	require.NoError(t, tensor.Read(got, 0))
	assert.Equal(t, []byte{0, 0, 0, 0}, got, "a mismatched entry must not be partially written")
}

func TestLoadValuesWritesDeviceBytes(t *testing.T) {
	_, catalog, set := loadFixture(t)

	require.NoError(t, LoadValues(set, catalog, device.Input, [][]float32{{2.5}, {1.0, -1.0}}))

	tensor, ok := set.Get("x")
	require.True(t, ok)
	got := make([]byte, 4)
	require.NoError(t, tensor.Read(got, 0))

	want := make([]byte, 4)
	binary.LittleEndian.PutUint32(want, math.Float32bits(2.5))
	assert.Equal(t, want, got)
}

func TestLoadValuesCountMismatch(t *testing.T) {
	_, catalog, set := loadFixture(t)

	// The third catalog entry is an output: it is skipped without error,
	// but then fewer tensors were written than values supplied, which is
	// a misalignment the loader must not paper over.
	err := LoadValues(set, catalog, device.Input, [][]float32{{2.5}, {1.0, -1.0}, {3.0}})
	require.Error(t, err)
	assert.Equal(t, device.StatusFailure, device.StatusOf(err))
}

func TestLoadValuesMoreValuesThanCatalog(t *testing.T) {
	_, catalog, set := loadFixture(t)
	err := LoadValues(set, catalog, device.Input, [][]float32{{1}, {1, 2}, {1}, {1}})
	assert.Equal(t, device.StatusInvalid, device.StatusOf(err))
}

func TestLoadValuesRoundTrip(t *testing.T) {
	_, catalog, set := loadFixture(t)

	values := []float32{0.25, -4.5}
	require.NoError(t, LoadValues(set, catalog, device.Input, [][]float32{{1.5}, values}))

	tensor, ok := set.Get("y")
	require.True(t, ok)
	raw := make([]byte, 8)
	require.NoError(t, tensor.Read(raw, 0))

	got := []float32{
		math.Float32frombits(binary.LittleEndian.Uint32(raw[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])),
	}
	assert.Equal(t, values, got, "write then read back must be bit-for-bit identical")
}
