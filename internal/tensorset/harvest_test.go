package tensorset

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphrun/internal/device"
	"github.com/born-ml/graphrun/internal/device/sim"
)

func TestSaveOutputsWritesFileAndDecodes(t *testing.T) {
	rt := sim.New()
	info := device.TensorInfo{Name: "logits", DType: device.Float32, Size: 8, Usage: device.Output}

	tensor, err := rt.AllocateTensor(info.Name, info.Size)
	require.NoError(t, err)
	defer tensor.Release()

	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(2.5))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-1.25))
	require.NoError(t, tensor.Write(raw, 0))

	dir := t.TempDir()
	h := &SaveOutputs{Dir: dir}
	out, err := NewOutput(info)
	require.NoError(t, err)

	proceed, status := h.Handle(tensor, info, &out)
	assert.True(t, proceed)
	assert.Equal(t, device.StatusOK, status)
	assert.Equal(t, []float32{2.5, -1.25}, out.Float32())

	got, err := os.ReadFile(filepath.Join(dir, "logits.out"))
	require.NoError(t, err)
	assert.Equal(t, raw, got, "the persisted file holds the raw device bytes")
}

func TestSaveOutputsReplacesExtension(t *testing.T) {
	assert.Equal(t, "y.out", outputFileName("y.bin"))
	assert.Equal(t, "y.out", outputFileName("y"))
	assert.Equal(t, "model.y.out", outputFileName("model.y.npy"))
}

func TestSaveOutputsReadFailureProceeds(t *testing.T) {
	rt := sim.New()
	info := device.TensorInfo{Name: "gone", DType: device.Float32, Size: 4, Usage: device.Output}

	tensor, err := rt.AllocateTensor(info.Name, info.Size)
	require.NoError(t, err)
	require.NoError(t, tensor.Release())

	h := &SaveOutputs{Dir: t.TempDir()}
	out, err := NewOutput(info)
	require.NoError(t, err)

	proceed, status := h.Handle(tensor, info, &out)
	assert.True(t, proceed, "a single unreadable tensor must not abort the harvest")
	assert.Equal(t, device.StatusInvalidHandle, status)
	assert.True(t, out.Empty())
}

func TestSaveOutputsOpenFailureSkipsDecode(t *testing.T) {
	rt := sim.New()
	info := device.TensorInfo{Name: "blocked", DType: device.Float32, Size: 4, Usage: device.Output}

	tensor, err := rt.AllocateTensor(info.Name, info.Size)
	require.NoError(t, err)
	defer tensor.Release()

	h := &SaveOutputs{Dir: filepath.Join(t.TempDir(), "no-such-subdir")}
	out, err := NewOutput(info)
	require.NoError(t, err)

	proceed, status := h.Handle(tensor, info, &out)
	assert.True(t, proceed)
	assert.Equal(t, device.StatusFailure, status)
	assert.True(t, out.Empty(), "nothing is decoded when the file cannot be created")
}

func TestSaveOutputsDecodeMismatchProceeds(t *testing.T) {
	rt := sim.New()
	info := device.TensorInfo{Name: "mask", DType: device.UInt8, Size: 4, Usage: device.Output}

	tensor, err := rt.AllocateTensor(info.Name, info.Size)
	require.NoError(t, err)
	defer tensor.Release()

	dir := t.TempDir()
	h := &SaveOutputs{Dir: dir}

	// A float32 accumulator cannot receive uint8 bytes.
	out, err := NewOutput(device.TensorInfo{Name: "mask", DType: device.Float32, Size: 4, Usage: device.Output})
	require.NoError(t, err)

	proceed, status := h.Handle(tensor, info, &out)
	assert.True(t, proceed)
	assert.Equal(t, device.StatusFailure, status)

	// The file was still written before the decode failed.
	_, err = os.Stat(filepath.Join(dir, "mask.out"))
	assert.NoError(t, err)
}

func TestSaveOutputsThroughDispatch(t *testing.T) {
	rt := sim.New()
	catalog := testCatalog(t, []device.TensorInfo{
		{Name: "x", DType: device.Float32, Size: 4, Usage: device.Input},
		{Name: "y", DType: device.Float32, Size: 4, Usage: device.Output},
	})
	set, err := Allocate(rt, catalog, device.Output)
	require.NoError(t, err)
	defer set.Release()

	tensor, ok := set.Get("y")
	require.True(t, ok)
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(7.0))
	require.NoError(t, tensor.Write(raw, 0))

	dir := t.TempDir()
	outputs, status, err := Dispatch(set, catalog, device.Output, &SaveOutputs{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, device.StatusOK, status)
	require.Len(t, outputs, 1)
	assert.Equal(t, []float32{7.0}, outputs[0].Float32())

	got, err := os.ReadFile(filepath.Join(dir, "y.out"))
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}
