package tensorset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/born-ml/graphrun/internal/device"
)

// OutputFileExt is the extension given to persisted output tensor files.
const OutputFileExt = ".out"

// SaveOutputs is the harvest handler for the Output direction. For each
// tensor it reads the full device byte range into a host buffer, persists
// the raw bytes to "<tensor name with extension replaced by .out>" under
// Dir, and decodes the same bytes into the Output accumulator.
//
// Per-tensor failures (device read, file create, file write, dtype
// mismatch) are reported through the returned status but never abort the
// dispatch: one tensor failing to persist must not prevent harvesting the
// rest. The dispatcher's first-failure fold preserves the first such
// status for the caller.
type SaveOutputs struct {
	Dir string         // destination directory; "" means the working directory
	Log zerolog.Logger // defaults to a disabled logger
}

var _ Handler = (*SaveOutputs)(nil)

// Handle implements Handler.
func (h *SaveOutputs) Handle(t device.Tensor, info device.TensorInfo, out *Output) (bool, device.Status) {
	buf := make([]byte, info.Size)
	if err := t.Read(buf, 0); err != nil {
		h.Log.Warn().Err(err).Str("tensor", info.Name).Msg("unable to read output tensor")
		return true, device.StatusOf(err)
	}

	status := device.StatusOK

	path := filepath.Join(h.Dir, outputFileName(info.Name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		h.Log.Warn().Err(err).Str("path", path).Msg("unable to open output file for writing")
		return true, device.StatusFailure
	}
	if _, err := f.Write(buf); err != nil {
		h.Log.Warn().Err(err).Str("path", path).Msg("unable to write output tensor file")
		status = device.StatusFailure
	}
	if err := f.Close(); err != nil && status == device.StatusOK {
		status = device.StatusFailure
	}

	if err := out.Decode(info, buf); err != nil {
		h.Log.Warn().Err(err).Str("tensor", info.Name).Msg("unable to decode output tensor")
		return true, device.StatusOf(err)
	}

	return true, status
}

// outputFileName replaces name's extension with OutputFileExt.
func outputFileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + OutputFileExt
}
