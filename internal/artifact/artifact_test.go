package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.bin")
	want := []byte{0x47, 0x52, 0x50, 0x48, 0x01}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FileSource{}.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Fetch = %v, want %v", got, want)
	}
}

func TestFileSourceFetchMissing(t *testing.T) {
	_, err := FileSource{}.Fetch(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestDefaultDispatchesLocalPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Default().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("Fetch = %q, want %q", got, "ok")
	}
}

func TestSplitGCSRef(t *testing.T) {
	tests := []struct {
		ref     string
		bucket  string
		object  string
		wantErr bool
	}{
		{ref: "gs://models/graph.bin", bucket: "models", object: "graph.bin"},
		{ref: "gs://models/nested/path/graph.bin", bucket: "models", object: "nested/path/graph.bin"},
		{ref: "gs://models", wantErr: true},
		{ref: "gs:///graph.bin", wantErr: true},
		{ref: "gs://models/", wantErr: true},
		{ref: "s3://models/graph.bin", wantErr: true},
		{ref: "graph.bin", wantErr: true},
	}
	for _, tt := range tests {
		bucket, object, err := splitGCSRef(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("splitGCSRef(%q): expected error", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitGCSRef(%q): %v", tt.ref, err)
			continue
		}
		if bucket != tt.bucket || object != tt.object {
			t.Errorf("splitGCSRef(%q) = %q, %q; want %q, %q", tt.ref, bucket, object, tt.bucket, tt.object)
		}
	}
}
