package runner

import (
	"github.com/rs/zerolog"

	"github.com/born-ml/graphrun/internal/device"
)

// Context is the process-wide handle to an initialized device runtime.
//
// The native runtimes support exactly one initialize/close cycle per
// process: once a Context for a driver has been closed, constructing
// another one fails with device.ErrRuntimeFinalized. This is a documented
// limitation of the underlying runtimes; callers must not work around it
// by retrying.
type Context struct {
	rt     device.Runtime
	log    zerolog.Logger
	closed bool
}

// NewContext initializes the named driver and returns the process handle.
func NewContext(driver string, log zerolog.Logger, opts ...string) (*Context, error) {
	rt, err := device.Open(driver, opts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", rt.Name()).Msg("device runtime initialized")
	return &Context{rt: rt, log: log}, nil
}

// Runtime returns the open device runtime.
func (c *Context) Runtime() device.Runtime {
	return c.rt
}

// Runner builds a Runner on this context's runtime. The context's logger
// is used unless the options carry their own.
func (c *Context) Runner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = &c.log
	}
	return New(c.rt, opts)
}

// Close shuts the runtime down. The driver cannot be reinitialized in this
// process afterwards.
func (c *Context) Close() error {
	if c.closed {
		return device.ErrRuntimeFinalized
	}
	c.closed = true
	c.log.Info().Str("driver", c.rt.Name()).Msg("device runtime closed")
	return c.rt.Close()
}
