package device

import (
	"errors"
	"testing"
)

func TestDTypeElemSize(t *testing.T) {
	tests := []struct {
		dtype DType
		size  int
	}{
		{Float32, 4},
		{UInt8, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.ElemSize(); got != tt.size {
			t.Errorf("%s.ElemSize() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestUsageValid(t *testing.T) {
	if !Input.Valid() || !Output.Valid() {
		t.Error("Input and Output must be valid usages")
	}
	if Usage(42).Valid() {
		t.Error("Usage(42) must not be valid")
	}
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []TensorInfo
		wantErr error
	}{
		{
			name:    "empty",
			entries: nil,
			wantErr: ErrEmptyCatalog,
		},
		{
			name: "duplicate name",
			entries: []TensorInfo{
				{Name: "x", DType: Float32, Size: 4, Usage: Input},
				{Name: "x", DType: Float32, Size: 4, Usage: Output},
			},
			wantErr: ErrDuplicateTensor,
		},
		{
			name: "misaligned float32",
			entries: []TensorInfo{
				{Name: "x", DType: Float32, Size: 6, Usage: Input},
			},
			wantErr: ErrMisalignedTensor,
		},
		{
			name: "valid",
			entries: []TensorInfo{
				{Name: "x", DType: Float32, Size: 16, Usage: Input},
				{Name: "y", DType: UInt8, Size: 3, Usage: Output},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog(tt.entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewCatalog error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCatalog: %v", err)
			}
			if c.Len() != len(tt.entries) {
				t.Errorf("Len() = %d, want %d", c.Len(), len(tt.entries))
			}
		})
	}
}

func TestCatalogLookupAndCount(t *testing.T) {
	c, err := NewCatalog([]TensorInfo{
		{Name: "a", DType: Float32, Size: 8, Usage: Input},
		{Name: "b", DType: Float32, Size: 4, Usage: Input},
		{Name: "c", DType: UInt8, Size: 2, Usage: Output},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if got := c.Count(Input); got != 2 {
		t.Errorf("Count(Input) = %d, want 2", got)
	}
	if got := c.Count(Output); got != 1 {
		t.Errorf("Count(Output) = %d, want 1", got)
	}

	info, ok := c.Lookup("b")
	if !ok || info.Size != 4 {
		t.Errorf("Lookup(b) = %+v, %v", info, ok)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) must not succeed")
	}

	if got := c.At(2).Name; got != "c" {
		t.Errorf("At(2).Name = %q, want c", got)
	}
}

func TestTensorInfoElems(t *testing.T) {
	tests := []struct {
		info  TensorInfo
		elems int
	}{
		{TensorInfo{DType: Float32, Size: 16}, 4},
		{TensorInfo{DType: UInt8, Size: 16}, 16},
	}
	for _, tt := range tests {
		if got := tt.info.Elems(); got != tt.elems {
			t.Errorf("Elems() = %d, want %d", got, tt.elems)
		}
	}
}
