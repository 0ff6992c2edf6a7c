package reactor

import (
	"github.com/brickingsoft/reactor/pkg/ring"
)

// Kernel is the batched submission and completion interface a Reactor drives.
// Prepare methods queue one entry tagged with userData, Submit hands queued entries to the kernel,
// Reap copies ready completions. ProvideBuffers entries complete with user data 0.
//
// *ring.Ring is the io_uring implementation.
type Kernel interface {
	PrepareRead(userData uint64, fd int, group uint16, length uint32) error
	PrepareRecv(userData uint64, fd int, group uint16, length uint32, multishot bool) error
	PrepareWrite(userData uint64, fd int, b []byte) error
	PrepareSend(userData uint64, fd int, b []byte) error
	PrepareClose(userData uint64, fd int) error
	PrepareCancel(userData uint64, target uint64) error
	ProvideBuffers(group uint16, bid uint16, b []byte, size int) error
	Submit() error
	Reap(cqes []ring.Completion, wait bool) (int, error)
	Close() error
}
