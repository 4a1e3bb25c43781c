package device

import "fmt"

// Status is a device-runtime status code. The set mirrors the codes the
// native runtimes report; anything that is not StatusOK is fatal for the
// current run, since the runtimes give no transient-vs-permanent guidance.
type Status int

const (
	StatusOK Status = iota
	StatusFailure
	StatusInvalid
	StatusInvalidHandle
	StatusResource
	StatusHardware
	StatusUnsupported
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailure:
		return "failure"
	case StatusInvalid:
		return "invalid argument"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusResource:
		return "resource exhausted"
	case StatusHardware:
		return "hardware error"
	case StatusUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusError carries a runtime status code across the capability boundary.
type StatusError struct {
	Op     string // the runtime call that failed, e.g. "tensor_write"
	Status Status
	Err    error // optional underlying cause
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device: %s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("device: %s: %s", e.Op, e.Status)
}

// Unwrap returns the underlying cause, if any.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// Errf constructs a StatusError with a formatted cause.
func Errf(op string, status Status, format string, args ...any) error {
	return &StatusError{Op: op, Status: status, Err: fmt.Errorf(format, args...)}
}

// StatusOf extracts the status code from an error chain. A nil error is
// StatusOK; an error without a StatusError in its chain is StatusFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for e := err; e != nil; {
		if se, ok := e.(*StatusError); ok {
			return se.Status
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return StatusFailure
}
