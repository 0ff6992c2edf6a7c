package reactor

import (
	"io"
	"strconv"
	"syscall"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/sirupsen/logrus"
)

// ReadHandler receives each chunk of a repeating read. b is borrowed from the buffer group and is
// only valid until the handler returns. err is io.EOF at end of stream or the kernel's errno, b is
// nil then and the return value is ignored. Returning false stops the read.
type ReadHandler func(b []byte, err error) bool

// StartRead starts a repeating read on fd using buffers of group.
func (r *Reactor) StartRead(fd int, group uint16, handler ReadHandler) error {
	return r.startRead(fd, group, 0, handler)
}

// StartRecv starts a repeating receive on the socket fd using buffers of group.
// It is multishot when the kernel supports it.
func (r *Reactor) StartRecv(fd int, group uint16, handler ReadHandler) error {
	return r.startRead(fd, group, opFlagUseRecv, handler)
}

func (r *Reactor) startRead(fd int, group uint16, flags uint8, handler ReadHandler) (err error) {
	if handler == nil {
		err = ErrNilHandler
		return
	}
	if err = r.checkOpen(fd); err != nil {
		return
	}
	if _, has := r.reads[fd]; has {
		err = withFd(ErrReadActive, fd)
		return
	}
	if _, has := r.groups[group]; !has {
		err = errors.From(ErrUnknownBufferGroup, errors.WithMeta("group", strconv.Itoa(int(group))))
		return
	}
	op := r.acquireOperation(opRead, fd)
	op.group = group
	op.flags = opFlagRepeat | flags
	if flags&opFlagUseRecv != 0 && r.multishot {
		op.flags |= opFlagMultishot
	}
	op.readHandler = handler
	if err = r.enqueue(op); err != nil {
		r.releaseOperation(op)
		return
	}
	r.reads[fd] = op
	r.ref(fd)
	return
}

// StopRead cancels the active read or receive on fd. The read stays active, and keeps its
// reference on fd, until the kernel confirms the cancellation.
func (r *Reactor) StopRead(fd int) (err error) {
	op, has := r.reads[fd]
	if !has {
		err = withFd(ErrNoActiveRead, fd)
		return
	}
	if op.flags&opFlagCancelled != 0 {
		return
	}
	err = r.cancel(op)
	return
}

func (r *Reactor) cancel(target *operation) (err error) {
	op := r.acquireOperation(opCancel, target.fd)
	op.target = target.id
	if err = r.enqueue(op); err != nil {
		r.releaseOperation(op)
		return
	}
	target.flags |= opFlagCancelled
	return
}

func (r *Reactor) handleRead(op *operation, cqe ring.Completion) {
	if cqe.Res == -int32(syscall.ENOBUFS) && op.flags&(opFlagCancelled|opFlagStopped) == 0 && !cqe.More() {
		// the group ran dry, try to submit again behind the buffers recycled in this pass.
		if err := r.enqueue(op); err != nil {
			r.stop(op, err)
			r.teardownRead(op)
		}
		return
	}
	keep := false
	switch {
	case cqe.Res > 0:
		bid, ok := cqe.Buffer()
		if !ok {
			r.misuse("read completed without a selected buffer", logrus.Fields{"fd": op.fd, "id": op.id})
		}
		keep = r.deliver(op, bid, int(cqe.Res))
	case cqe.Res == 0:
		if bid, ok := cqe.Buffer(); ok {
			r.recycle(op.group, bid)
		}
		r.stop(op, io.EOF)
	default:
		r.stop(op, syscall.Errno(-cqe.Res))
	}
	// the handler may have stopped the read itself.
	if op.flags&opFlagCancelled != 0 {
		keep = false
	}

	if keep {
		if op.flags&opFlagMultishot != 0 && cqe.More() {
			return
		}
		if err := r.enqueue(op); err != nil {
			r.stop(op, err)
			r.teardownRead(op)
		}
		return
	}
	if cqe.More() {
		// the kernel keeps the receive armed, wait for its final completion.
		if op.flags&opFlagCancelled == 0 {
			if err := r.cancel(op); err != nil {
				r.logger.WithFields(logrus.Fields{"fd": op.fd, "error": err}).Error("cancel receive failed")
			}
		}
		return
	}
	r.teardownRead(op)
}

// deliver lends the selected buffer to the handler and recycles it right after, even if the handler panics.
func (r *Reactor) deliver(op *operation, bid uint16, n int) (keep bool) {
	defer r.recycle(op.group, bid)
	if op.flags&opFlagStopped != 0 {
		return false
	}
	b := r.groups[op.group].Slice(bid)[:n]
	if keep = op.readHandler(b, nil); !keep {
		op.flags |= opFlagStopped
	}
	return
}

func (r *Reactor) stop(op *operation, err error) {
	if op.flags&opFlagStopped != 0 {
		return
	}
	op.flags |= opFlagStopped
	op.readHandler(nil, err)
}

func (r *Reactor) teardownRead(op *operation) {
	fd := op.fd
	if r.reads[fd] == op {
		delete(r.reads, fd)
	}
	r.releaseOperation(op)
	r.unref(fd)
}

func (r *Reactor) handleCancel(op *operation, cqe ring.Completion) {
	if cqe.Res < 0 {
		errno := syscall.Errno(-cqe.Res)
		// the target completed before the cancellation reached it.
		if errno != syscall.ENOENT && errno != syscall.EALREADY {
			r.logger.WithFields(logrus.Fields{"fd": op.fd, "target": op.target, "error": errno}).Warn("cancel failed")
		}
	}
	r.releaseOperation(op)
}
