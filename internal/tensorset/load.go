package tensorset

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/graphrun/internal/device"
)

// LoadValues copies host float32 buffers into the device tensors of set.
//
// Values are paired positionally with catalog entries: values[i] belongs to
// catalog entry i. Entries whose usage differs from the requested direction
// are skipped without error, so a single values slice aligned to the full
// catalog ordering can be loaded one direction at a time. Every value's
// length is still validated against its entry's byte size before the skip,
// and a mismatch fails the whole call with no partial write for that entry.
//
// After the walk, the number of tensors actually written must equal
// len(values); a shortfall means the caller's values are misaligned with
// the catalog and the call fails rather than silently succeeding.
func LoadValues(set *Set, catalog *device.Catalog, usage device.Usage, values [][]float32) error {
	if len(values) == 0 {
		return nil
	}
	if !usage.Valid() {
		return device.Errf("load_tensor_values", device.StatusInvalid, "invalid usage %s", usage)
	}
	if catalog == nil || catalog.Len() == 0 {
		return device.Errf("load_tensor_values", device.StatusInvalid, "empty catalog")
	}
	if len(values) > catalog.Len() {
		return device.Errf("load_tensor_values", device.StatusInvalid,
			"%d values for a catalog of %d tensors", len(values), catalog.Len())
	}

	loaded := 0
	for i, data := range values {
		info := catalog.At(i)

		if want := int(info.Size) / 4; len(data) != want {
			return device.Errf("load_tensor_values", device.StatusInvalid,
				"tensor %q: %d float32 values for %d bytes (want %d)", info.Name, len(data), info.Size, want)
		}

		if info.Usage != usage {
			continue
		}

		t, ok := set.Get(info.Name)
		if !ok {
			return device.Errf("load_tensor_values", device.StatusInvalidHandle,
				"tensor %q not present in %s set", info.Name, usage)
		}
		if err := t.Write(float32Bytes(data), 0); err != nil {
			return fmt.Errorf("writing tensor %q: %w", info.Name, err)
		}
		loaded++
	}

	if loaded != len(values) {
		return device.Errf("load_tensor_values", device.StatusFailure,
			"loaded %d of %d values; values are misaligned with the catalog's %s tensors",
			loaded, len(values), usage)
	}
	return nil
}

// float32Bytes packs values into the device's native little-endian layout.
func float32Bytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
