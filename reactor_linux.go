//go:build linux

package reactor

import (
	"runtime"

	"github.com/brickingsoft/reactor/pkg/kernel"
	"github.com/brickingsoft/reactor/pkg/process"
	"github.com/brickingsoft/reactor/pkg/ring"
)

// New creates a reactor on a new io_uring instance.
// Multishot receive is disabled on kernels older than 6.0.
func New(options ...Option) (*Reactor, error) {
	opts := newOptions(options)
	if !opts.MultishotDisabled {
		if ok, _ := kernel.Check(6, 0, 0); !ok {
			options = append(options, WithMultiShotDisabled(true))
		}
	}
	r, err := ring.New(opts.Entries)
	if err != nil {
		return nil, err
	}
	return NewWithKernel(r, options...), nil
}

// Pin locks the calling goroutine to its OS thread and binds the thread to cpu.
// Call it from the goroutine that drives the reactor.
func (r *Reactor) Pin(cpu int) error {
	runtime.LockOSThread()
	if err := process.SetCPUAffinity(cpu); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}

// Unpin undoes Pin.
func (r *Reactor) Unpin() {
	runtime.UnlockOSThread()
}
