package reactor

import (
	"syscall"

	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/sirupsen/logrus"
)

// RunOnce submits every queued request, reaps the completions that are ready and runs their
// handlers in completion order. In WaitBlock mode it blocks until at least one completion is ready,
// unless nothing is in flight. It returns the number of operations still in flight.
// A panicking handler unwinds out of RunOnce, the completions reaped with it are dispatched by the next call.
func (r *Reactor) RunOnce() (inflight int, err error) {
	if r.closed {
		err = ErrClosed
		return
	}
	if err = r.kernel.Submit(); err != nil {
		inflight = len(r.ops)
		return
	}
	if r.cqHead == r.cqTail {
		wait := r.options.WaitMode == WaitBlock && len(r.ops) > 0
		n, reapErr := r.kernel.Reap(r.cqes, wait)
		if reapErr != nil {
			err = reapErr
			inflight = len(r.ops)
			return
		}
		r.cqHead, r.cqTail = 0, n
	}
	dispatched := 0
	for r.cqHead < r.cqTail {
		cqe := r.cqes[r.cqHead]
		r.cqes[r.cqHead] = ring.Completion{}
		r.cqHead++
		dispatched++
		r.dispatch(cqe)
	}
	// re-armed reads, chained sends and deferred closes.
	if dispatched > 0 {
		err = r.kernel.Submit()
	}
	inflight = len(r.ops)
	return
}

func (r *Reactor) dispatch(cqe ring.Completion) {
	if cqe.UserData == 0 {
		if cqe.Res < 0 {
			r.logger.WithField("error", syscall.Errno(-cqe.Res)).Warn("provide buffers failed")
		}
		return
	}
	op, has := r.ops[cqe.UserData]
	if !has {
		r.misuse("completion of unknown operation", logrus.Fields{"id": cqe.UserData, "res": cqe.Res})
	}
	switch kindOf(cqe.UserData) {
	case opRead:
		r.handleRead(op, cqe)
	case opWrite:
		r.handleWrite(op, cqe)
	case opSendAll:
		r.handleSendAll(op, cqe)
	case opClose:
		r.handleClose(op, cqe)
	case opCancel:
		r.handleCancel(op, cqe)
	default:
		r.misuse("completion of unknown operation kind", logrus.Fields{"id": cqe.UserData})
	}
}
