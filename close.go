package reactor

import (
	"syscall"

	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/sirupsen/logrus"
)

// CloseHandler runs once the descriptor has been released by the kernel.
type CloseHandler func()

type closeRequest struct {
	handler   CloseHandler
	submitted bool
}

// Close closes fd once no operation references it. From this call on every request on fd fails
// with ErrClosing. An active read on fd is stopped, writes and sends run to completion first.
func (r *Reactor) Close(fd int, handler CloseHandler) (err error) {
	if err = r.checkOpen(fd); err != nil {
		return
	}
	req := &closeRequest{handler: handler}
	if r.refs[fd] == 0 {
		if err = r.submitClose(fd, req); err != nil {
			return
		}
		r.closing[fd] = req
		return
	}
	r.closing[fd] = req
	r.logger.WithFields(logrus.Fields{"fd": fd, "refs": r.refs[fd]}).Debug("close deferred")
	if read, has := r.reads[fd]; has && read.flags&opFlagCancelled == 0 {
		if cancelErr := r.cancel(read); cancelErr != nil {
			r.logger.WithFields(logrus.Fields{"fd": fd, "error": cancelErr}).Error("stop read before close failed")
		}
	}
	return
}

func (r *Reactor) submitClose(fd int, req *closeRequest) (err error) {
	op := r.acquireOperation(opClose, fd)
	op.closeHandler = req.handler
	if err = r.enqueue(op); err != nil {
		r.releaseOperation(op)
		return
	}
	req.submitted = true
	return
}

func (r *Reactor) handleClose(op *operation, cqe ring.Completion) {
	fd, handler := op.fd, op.closeHandler
	r.releaseOperation(op)
	delete(r.closing, fd)
	if cqe.Res < 0 {
		r.logger.WithFields(logrus.Fields{"fd": fd, "error": syscall.Errno(-cqe.Res)}).Warn("close failed")
	}
	if handler != nil {
		handler()
	}
}

func (r *Reactor) ref(fd int) {
	r.refs[fd]++
}

// unref drops one reference of fd and runs a deferred close when it was the last one.
func (r *Reactor) unref(fd int) {
	n, has := r.refs[fd]
	if !has || n < 1 {
		r.misuse("descriptor reference count underflow", logrus.Fields{"fd": fd})
	}
	if n--; n > 0 {
		r.refs[fd] = n
		return
	}
	delete(r.refs, fd)
	req, closing := r.closing[fd]
	if !closing || req.submitted {
		return
	}
	if err := r.submitClose(fd, req); err != nil {
		// nothing references fd and the close can not be queued, release the bookkeeping anyway.
		r.logger.WithFields(logrus.Fields{"fd": fd, "error": err}).Error("deferred close failed")
		delete(r.closing, fd)
		if req.handler != nil {
			req.handler()
		}
		return
	}
	r.logger.WithField("fd", fd).Debug("deferred close submitted")
}
