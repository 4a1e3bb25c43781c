// Package artifact reads compiled graph artifacts into memory. An artifact
// is an opaque binary blob; this package never parses its contents, it
// only fetches the whole blob from a local path or an object store.
package artifact

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source fetches the full bytes of an artifact by reference.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FileSource reads artifacts from the local filesystem.
type FileSource struct{}

var _ Source = FileSource{}

// Fetch reads the file at ref in full.
func (FileSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %q: %w", ref, err)
	}
	return data, nil
}

// Default returns a source that picks by reference scheme: "gs://"
// references go to Google Cloud Storage, everything else to the local
// filesystem.
func Default() Source {
	return schemeSource{}
}

type schemeSource struct{}

func (schemeSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "gs://") {
		return GCSSource{}.Fetch(ctx, ref)
	}
	return FileSource{}.Fetch(ctx, ref)
}
