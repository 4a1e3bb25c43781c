package device

import (
	"errors"
	"fmt"
	"testing"
)

// stubRuntime is the minimal runtime for registry tests.
type stubRuntime struct{ name string }

func (s *stubRuntime) Name() string                                  { return s.name }
func (s *stubRuntime) LoadModel(data []byte) (Model, error)          { return nil, errors.New("no models") }
func (s *stubRuntime) AllocateTensor(string, uint64) (Tensor, error) { return nil, errors.New("no mem") }
func (s *stubRuntime) Close() error                                  { return nil }

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("no-such-driver"); err == nil {
		t.Fatal("Open of an unregistered driver must fail")
	}
}

func TestOpenCloseOpenFails(t *testing.T) {
	Register("finalize-test", func(opts ...string) (Runtime, error) {
		return &stubRuntime{name: "finalize-test"}, nil
	})

	rt, err := Open("finalize-test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The native runtimes do not support re-initialization after close;
	// a second Open must fail deterministically, never hand out a stale
	// runtime.
	if _, err := Open("finalize-test"); !errors.Is(err, ErrRuntimeFinalized) {
		t.Fatalf("second Open error = %v, want ErrRuntimeFinalized", err)
	}

	// The closed handle is dead too.
	if err := rt.Close(); !errors.Is(err, ErrRuntimeFinalized) {
		t.Fatalf("second Close error = %v, want ErrRuntimeFinalized", err)
	}
	if _, err := rt.LoadModel(nil); !errors.Is(err, ErrRuntimeFinalized) {
		t.Fatalf("LoadModel after Close error = %v, want ErrRuntimeFinalized", err)
	}
	if _, err := rt.AllocateTensor("x", 4); !errors.Is(err, ErrRuntimeFinalized) {
		t.Fatalf("AllocateTensor after Close error = %v, want ErrRuntimeFinalized", err)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusOK},
		{"plain error", errors.New("boom"), StatusFailure},
		{"status error", &StatusError{Op: "execute", Status: StatusHardware}, StatusHardware},
		{"wrapped status error", fmt.Errorf("run: %w", Errf("tensor_read", StatusInvalid, "oob")), StatusInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := Errf("tensor_write", StatusInvalid, "offset %d out of range", 9)
	want := "device: tensor_write: invalid argument: offset 9 out of range"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
