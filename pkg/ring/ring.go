//go:build linux

package ring

import (
	"github.com/brickingsoft/errors"
	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"
	"syscall"
	"unsafe"
)

// New creates a ring with the given number of submission entries.
func New(entries uint32) (*Ring, error) {
	if entries == 0 {
		entries = 256
	}
	r, rErr := giouring.CreateRing(entries)
	if rErr != nil {
		return nil, errors.New(
			"create ring failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpSetup),
			errors.WithWrap(rErr),
		)
	}
	return &Ring{
		ring: r,
		cq:   make([]*giouring.CompletionQueueEvent, entries*2),
	}, nil
}

// Ring is a giouring instance driven by a single goroutine.
// Every Prepare method only fills a submission entry, Submit hands them to the kernel.
type Ring struct {
	ring     *giouring.Ring
	cq       []*giouring.CompletionQueueEvent
	prepared uint32
}

func (ring *Ring) PrepareRead(userData uint64, fd int, group uint16, length uint32) (err error) {
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareRead(fd, 0, length, currentPosition)
	sqe.Flags |= sqeBufferSelect
	sqe.BufIG = group
	sqe.UserData = userData
	return
}

func (ring *Ring) PrepareRecv(userData uint64, fd int, group uint16, length uint32, multishot bool) (err error) {
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareRecv(fd, 0, length, 0)
	if multishot {
		sqe.IoPrio |= recvMultishot
	}
	sqe.Flags |= sqeBufferSelect
	sqe.BufIG = group
	sqe.UserData = userData
	return
}

func (ring *Ring) PrepareWrite(userData uint64, fd int, b []byte) (err error) {
	if len(b) == 0 {
		err = ErrEmptyBytes
		return
	}
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareWrite(fd, uintptr(unsafe.Pointer(unsafe.SliceData(b))), uint32(len(b)), currentPosition)
	sqe.UserData = userData
	return
}

func (ring *Ring) PrepareSend(userData uint64, fd int, b []byte) (err error) {
	if len(b) == 0 {
		err = ErrEmptyBytes
		return
	}
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareSend(fd, uintptr(unsafe.Pointer(unsafe.SliceData(b))), uint32(len(b)), unix.MSG_NOSIGNAL)
	sqe.UserData = userData
	return
}

func (ring *Ring) PrepareClose(userData uint64, fd int) (err error) {
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareClose(fd)
	sqe.UserData = userData
	return
}

func (ring *Ring) PrepareCancel(userData uint64, target uint64) (err error) {
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = sqeErr
		return
	}
	sqe.PrepareCancel64(target, 0)
	sqe.UserData = userData
	return
}

// ProvideBuffers hands len(b)/size consecutive buffers of group to the kernel, the first one gets bid.
// Its completion carries user data 0.
func (ring *Ring) ProvideBuffers(group uint16, bid uint16, b []byte, size int) (err error) {
	if len(b) == 0 || size < 1 {
		err = ErrEmptyBytes
		return
	}
	nr := len(b) / size
	sqe, sqeErr := ring.sqe()
	if sqeErr != nil {
		err = errors.New(
			"provide buffers failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpProvide),
			errors.WithWrap(sqeErr),
		)
		return
	}
	*sqe = giouring.SubmissionQueueEntry{}
	sqe.OpCode = opProvideBuffers
	sqe.Fd = int32(nr)
	sqe.Addr = uint64(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
	sqe.Len = uint32(size)
	sqe.Off = uint64(bid)
	sqe.BufIG = group
	return
}

// Submit flushes every prepared entry.
func (ring *Ring) Submit() (err error) {
	if ring.prepared == 0 {
		return
	}
	for {
		_, submitErr := ring.ring.Submit()
		if submitErr != nil {
			if errors.Is(submitErr, syscall.EINTR) || errors.Is(submitErr, syscall.EAGAIN) {
				continue
			}
			err = errors.New(
				"submit failed",
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaOpKey, errMetaOpSubmit),
				errors.WithWrap(submitErr),
			)
			return
		}
		break
	}
	ring.prepared = 0
	return
}

// Reap copies ready completions into cqes and marks them seen.
// When wait is true it blocks until at least one completion is ready.
func (ring *Ring) Reap(cqes []Completion, wait bool) (n int, err error) {
	if len(cqes) == 0 {
		return
	}
	if wait {
		if _, waitErr := ring.ring.WaitCQEs(1, nil, nil); waitErr != nil {
			if errors.Is(waitErr, syscall.EINTR) || errors.Is(waitErr, syscall.ETIME) {
				return
			}
			err = errors.New(
				"wait completions failed",
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaOpKey, errMetaOpWait),
				errors.WithWrap(waitErr),
			)
			return
		}
	}
	cq := ring.cq
	if len(cqes) < len(cq) {
		cq = cq[:len(cqes)]
	}
	completed := ring.ring.PeekBatchCQE(cq)
	if completed == 0 {
		return
	}
	for i := uint32(0); i < completed; i++ {
		cqe := cq[i]
		cq[i] = nil
		cqes[i] = Completion{
			UserData: cqe.UserData,
			Res:      cqe.Res,
			Flags:    cqe.Flags,
		}
	}
	ring.ring.CQAdvance(completed)
	n = int(completed)
	return
}

func (ring *Ring) Close() error {
	ring.ring.QueueExit()
	return nil
}

func (ring *Ring) sqe() (*giouring.SubmissionQueueEntry, error) {
	sqe := ring.ring.GetSQE()
	if sqe == nil {
		if err := ring.Submit(); err != nil {
			return nil, err
		}
		if sqe = ring.ring.GetSQE(); sqe == nil {
			return nil, ErrSubmissionQueueFull
		}
	}
	ring.prepared++
	return sqe, nil
}
