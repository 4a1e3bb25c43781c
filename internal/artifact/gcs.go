package artifact

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSSource reads artifacts from Google Cloud Storage. References take the
// form gs://bucket/object.
type GCSSource struct{}

var _ Source = GCSSource{}

// Fetch downloads the object in full.
func (GCSSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	bucket, object, err := splitGCSRef(ref)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", ref, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("downloading %q: %w", ref, err)
	}
	return data, nil
}

func splitGCSRef(ref string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(ref, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// reference: %q", ref)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed gs:// reference: %q", ref)
	}
	return bucket, object, nil
}
