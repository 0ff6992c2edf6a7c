package reactor

import (
	"io"
	"syscall"

	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
)

// SendAllHandler receives nil once every byte was sent, or the error that ended the send.
type SendAllHandler func(err error)

// SendAll sends every byte of b on the socket fd. Sends on the same fd reach the kernel one at a
// time in call order, and their handlers run in that order. A short send is continued internally.
// b must stay untouched until handler runs.
func (r *Reactor) SendAll(fd int, b []byte, handler SendAllHandler) (err error) {
	if err = r.checkOpen(fd); err != nil {
		return
	}
	if len(b) == 0 {
		err = ErrEmptyBytes
		return
	}
	op := r.acquireOperation(opSendAll, fd)
	op.b = b
	op.sendAllHandler = handler

	pending, has := r.sends[fd]
	if !has {
		pending = queue.New()
	}
	// the head of pending is the one in flight.
	if pending.Length() == 0 {
		if err = r.enqueue(op); err != nil {
			r.releaseOperation(op)
			return
		}
	}
	pending.Add(op)
	r.sends[fd] = pending
	r.ref(fd)
	return
}

func (r *Reactor) handleSendAll(op *operation, cqe ring.Completion) {
	if cqe.Res < 0 {
		r.completeSendAll(op, syscall.Errno(-cqe.Res))
		return
	}
	op.offset += int(cqe.Res)
	if op.offset >= len(op.b) {
		r.completeSendAll(op, nil)
		return
	}
	if cqe.Res == 0 {
		r.completeSendAll(op, io.ErrShortWrite)
		return
	}
	if err := r.enqueue(op); err != nil {
		r.completeSendAll(op, err)
	}
}

type sendResult struct {
	handler SendAllHandler
	err     error
}

// completeSendAll pops op, puts the next queued send in flight, then runs the handlers.
// Handlers run after the next send is in flight, so a SendAll issued from a handler queues behind it.
func (r *Reactor) completeSendAll(op *operation, err error) {
	fd := op.fd
	pending := r.sends[fd]
	if pending == nil || pending.Length() == 0 || pending.Peek().(*operation) != op {
		r.misuse("completed send is not the head of its queue", logrus.Fields{"fd": fd, "id": op.id})
	}
	pending.Remove()
	results := []sendResult{{op.sendAllHandler, err}}
	r.releaseOperation(op)

	for pending.Length() > 0 {
		next := pending.Peek().(*operation)
		enqueueErr := r.enqueue(next)
		if enqueueErr == nil {
			break
		}
		pending.Remove()
		results = append(results, sendResult{next.sendAllHandler, enqueueErr})
		r.releaseOperation(next)
	}
	if pending.Length() == 0 {
		delete(r.sends, fd)
	}

	for _, result := range results {
		if result.handler != nil {
			result.handler(result.err)
		}
	}
	for range results {
		r.unref(fd)
	}
}
