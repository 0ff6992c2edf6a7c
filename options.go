package reactor

import (
	"github.com/sirupsen/logrus"
)

// WaitMode decides how RunOnce reaps completions.
type WaitMode int

const (
	// WaitBlock blocks until at least one completion is ready while operations are in flight.
	WaitBlock WaitMode = iota
	// WaitPoll returns immediately when nothing is ready.
	WaitPoll
)

func (mode WaitMode) String() string {
	switch mode {
	case WaitBlock:
		return "block"
	case WaitPoll:
		return "poll"
	default:
		return "unknown"
	}
}

const (
	defaultEntries         = 256
	defaultBuffersPerGroup = 64
)

type Options struct {
	Entries           uint32
	BuffersPerGroup   int
	WaitMode          WaitMode
	MultishotDisabled bool
	Logger            logrus.FieldLogger
}

type Option func(*Options)

// WithEntries
// setup iouring's entries.
func WithEntries(entries uint32) Option {
	return func(opts *Options) {
		opts.Entries = entries
	}
}

// WithBuffersPerGroup
// setup how many buffers PrepareBuffers provides per group, at most 65536.
func WithBuffersPerGroup(n int) Option {
	return func(opts *Options) {
		opts.BuffersPerGroup = n
	}
}

// WithWaitMode
// setup whether RunOnce blocks for completions.
func WithWaitMode(mode WaitMode) Option {
	return func(opts *Options) {
		opts.WaitMode = mode
	}
}

// WithMultiShotDisabled
// setup to disable multishot receive
func WithMultiShotDisabled(disabled bool) Option {
	return func(opts *Options) {
		opts.MultishotDisabled = disabled
	}
}

// WithLogger
// setup logger, default is logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func newOptions(options []Option) Options {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	if opts.Entries == 0 {
		opts.Entries = defaultEntries
	}
	if opts.BuffersPerGroup < 1 {
		opts.BuffersPerGroup = defaultBuffersPerGroup
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return opts
}
