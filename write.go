package reactor

import (
	"syscall"

	"github.com/brickingsoft/reactor/pkg/ring"
)

// WriteHandler receives the number of bytes the kernel wrote, which may be less than requested,
// or the kernel's errno.
type WriteHandler func(n int, err error)

// Write submits a single write of b to fd. No remainder is written on a short write, handler decides.
// b must stay untouched until handler runs. Writes carry no ordering against each other or SendAll.
func (r *Reactor) Write(fd int, b []byte, handler WriteHandler) (err error) {
	if err = r.checkOpen(fd); err != nil {
		return
	}
	if len(b) == 0 {
		err = ErrEmptyBytes
		return
	}
	op := r.acquireOperation(opWrite, fd)
	op.b = b
	op.writeHandler = handler
	if err = r.enqueue(op); err != nil {
		r.releaseOperation(op)
		return
	}
	r.ref(fd)
	return
}

func (r *Reactor) handleWrite(op *operation, cqe ring.Completion) {
	fd, handler := op.fd, op.writeHandler
	r.releaseOperation(op)
	if handler != nil {
		if cqe.Res < 0 {
			handler(0, syscall.Errno(-cqe.Res))
		} else {
			handler(int(cqe.Res), nil)
		}
	}
	r.unref(fd)
}
