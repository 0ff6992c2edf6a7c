package reactor_test

import (
	"github.com/brickingsoft/reactor"
	"github.com/brickingsoft/reactor/pkg/ring"
	"github.com/sirupsen/logrus"
	"io"
	"testing"
)

// submission is one entry a fakeKernel accepted.
type submission struct {
	op        string
	userData  uint64
	fd        int
	group     uint16
	length    uint32
	multishot bool
	b         []byte
	target    uint64
}

type fakeBuffer struct {
	bid uint16
	b   []byte
}

// fakeKernel records submissions and hands out completions injected by the test.
type fakeKernel struct {
	submissions []submission
	provided    map[uint16][]fakeBuffer
	cq          []ring.Completion
	submits     int
	waits       int
	closed      bool
	failNext    error
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		provided: make(map[uint16][]fakeBuffer),
	}
}

func (k *fakeKernel) add(s submission) error {
	if err := k.failNext; err != nil {
		k.failNext = nil
		return err
	}
	k.submissions = append(k.submissions, s)
	return nil
}

func (k *fakeKernel) PrepareRead(userData uint64, fd int, group uint16, length uint32) error {
	return k.add(submission{op: "read", userData: userData, fd: fd, group: group, length: length})
}

func (k *fakeKernel) PrepareRecv(userData uint64, fd int, group uint16, length uint32, multishot bool) error {
	return k.add(submission{op: "recv", userData: userData, fd: fd, group: group, length: length, multishot: multishot})
}

func (k *fakeKernel) PrepareWrite(userData uint64, fd int, b []byte) error {
	return k.add(submission{op: "write", userData: userData, fd: fd, b: b})
}

func (k *fakeKernel) PrepareSend(userData uint64, fd int, b []byte) error {
	return k.add(submission{op: "send", userData: userData, fd: fd, b: b})
}

func (k *fakeKernel) PrepareClose(userData uint64, fd int) error {
	return k.add(submission{op: "close", userData: userData, fd: fd})
}

func (k *fakeKernel) PrepareCancel(userData uint64, target uint64) error {
	return k.add(submission{op: "cancel", userData: userData, target: target})
}

func (k *fakeKernel) ProvideBuffers(group uint16, bid uint16, b []byte, size int) error {
	if err := k.failNext; err != nil {
		k.failNext = nil
		return err
	}
	for i := 0; i*size < len(b); i++ {
		k.provided[group] = append(k.provided[group], fakeBuffer{
			bid: bid + uint16(i),
			b:   b[i*size : (i+1)*size],
		})
	}
	return nil
}

func (k *fakeKernel) Submit() error {
	k.submits++
	return nil
}

func (k *fakeKernel) Reap(cqes []ring.Completion, wait bool) (int, error) {
	if wait {
		k.waits++
	}
	n := copy(cqes, k.cq)
	k.cq = k.cq[n:]
	return n, nil
}

func (k *fakeKernel) Close() error {
	k.closed = true
	return nil
}

// of returns the submissions of op in order.
func (k *fakeKernel) of(op string) (s []submission) {
	for _, sub := range k.submissions {
		if sub.op == op {
			s = append(s, sub)
		}
	}
	return
}

func (k *fakeKernel) last(op string) (submission, bool) {
	s := k.of(op)
	if len(s) == 0 {
		return submission{}, false
	}
	return s[len(s)-1], true
}

func (k *fakeKernel) complete(userData uint64, res int32, flags uint32) {
	k.cq = append(k.cq, ring.Completion{UserData: userData, Res: res, Flags: flags})
}

// deliver copies data into the first provided buffer of group and completes userData with it.
func (k *fakeKernel) deliver(t *testing.T, userData uint64, group uint16, data []byte, more bool) uint16 {
	t.Helper()
	bufs := k.provided[group]
	if len(bufs) == 0 {
		t.Fatal("no buffer provided for group", group)
	}
	buf := bufs[0]
	k.provided[group] = bufs[1:]
	copy(buf.b, data)
	flags := ring.CQEFBuffer | uint32(buf.bid)<<ring.CQEBufferShift
	if more {
		flags |= ring.CQEFMore
	}
	k.complete(userData, int32(len(data)), flags)
	return buf.bid
}

func (k *fakeKernel) hasProvided(group uint16, bid uint16) bool {
	for _, buf := range k.provided[group] {
		if buf.bid == bid {
			return true
		}
	}
	return false
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newReactor(t *testing.T, options ...reactor.Option) (*reactor.Reactor, *fakeKernel) {
	t.Helper()
	k := newFakeKernel()
	options = append([]reactor.Option{reactor.WithLogger(quietLogger()), reactor.WithWaitMode(reactor.WaitPoll)}, options...)
	return reactor.NewWithKernel(k, options...), k
}

func runOnce(t *testing.T, r *reactor.Reactor) int {
	t.Helper()
	inflight, err := r.RunOnce()
	if err != nil {
		t.Fatal(err)
	}
	return inflight
}

func expectMisuse(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected panic")
		}
		err, ok := v.(error)
		if !ok || !reactor.IsMisuse(err) {
			t.Fatal("unexpected panic:", v)
		}
	}()
	fn()
}
