// Package reactor is a single-threaded io_uring reactor.
//
// A Reactor orders sends per descriptor, lends kernel-selected buffers to read handlers and closes a
// descriptor only after every operation that references it has completed. It is not safe for
// concurrent use: one goroutine calls the request methods and RunOnce, and every handler runs
// synchronously inside RunOnce.
package reactor

import (
	"strconv"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/reactor/pkg/bufferpool"
	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
)

// NewWithKernel creates a reactor on top of kernel. The reactor owns kernel from now on.
func NewWithKernel(kernel Kernel, options ...Option) *Reactor {
	opts := newOptions(options)
	return &Reactor{
		kernel:    kernel,
		options:   opts,
		logger:    opts.Logger.WithField(errMetaPkgKey, errMetaPkgVal),
		multishot: !opts.MultishotDisabled,
		ops:       make(map[uint64]*operation),
		freeOps:   make([]*operation, 0, 64),
		groups:    make(map[uint16]*bufferpool.Pool),
		refs:      make(map[int]int),
		closing:   make(map[int]*closeRequest),
		reads:     make(map[int]*operation),
		sends:     make(map[int]*queue.Queue),
		cqes:      make([]ring.Completion, opts.Entries*2),
	}
}

type Reactor struct {
	kernel    Kernel
	options   Options
	logger    logrus.FieldLogger
	multishot bool
	closed    bool

	seq     uint64
	ops     map[uint64]*operation
	freeOps []*operation

	groups  map[uint16]*bufferpool.Pool
	refs    map[int]int
	closing map[int]*closeRequest
	reads   map[int]*operation
	sends   map[int]*queue.Queue

	// reaped completions, cqes[cqHead:cqTail] are not dispatched yet.
	cqes   []ring.Completion
	cqHead int
	cqTail int
}

// Inflight returns the number of operations whose completion has not been dispatched.
func (r *Reactor) Inflight() int {
	return len(r.ops)
}

// Shutdown releases the kernel instance. It fails with ErrBusy while operations are in flight,
// keep calling RunOnce until it reports zero first.
func (r *Reactor) Shutdown() error {
	if r.closed {
		return ErrClosed
	}
	if n := len(r.ops); n > 0 {
		return errors.From(ErrBusy, errors.WithMeta("inflight", strconv.Itoa(n)))
	}
	r.closed = true
	return r.kernel.Close()
}

func (r *Reactor) checkOpen(fd int) error {
	if r.closed {
		return ErrClosed
	}
	if fd < 0 {
		return withFd(ErrInvalidDescriptor, fd)
	}
	if _, has := r.closing[fd]; has {
		return withFd(ErrClosing, fd)
	}
	return nil
}

func (r *Reactor) enqueue(op *operation) (err error) {
	switch op.kind() {
	case opRead:
		length := uint32(r.groups[op.group].Size())
		if op.flags&opFlagUseRecv != 0 {
			err = r.kernel.PrepareRecv(op.id, op.fd, op.group, length, op.flags&opFlagMultishot != 0)
		} else {
			err = r.kernel.PrepareRead(op.id, op.fd, op.group, length)
		}
	case opWrite:
		err = r.kernel.PrepareWrite(op.id, op.fd, op.b)
	case opSendAll:
		err = r.kernel.PrepareSend(op.id, op.fd, op.b[op.offset:])
	case opClose:
		err = r.kernel.PrepareClose(op.id, op.fd)
	case opCancel:
		err = r.kernel.PrepareCancel(op.id, op.target)
	}
	if err != nil {
		err = errors.New(
			"enqueue failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, op.kind().String()),
			errors.WithMeta(errMetaFdKey, strconv.Itoa(op.fd)),
			errors.WithWrap(err),
		)
	}
	return
}

// misuse reports a broken contract or corrupted bookkeeping. It does not return.
func (r *Reactor) misuse(msg string, fields logrus.Fields) {
	r.logger.WithFields(fields).Error(msg)
	panic(errors.From(ErrMisuse, errors.WithMeta("reason", msg)))
}
