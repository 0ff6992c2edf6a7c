//go:build linux

package ring_test

import (
	"bytes"
	"github.com/brickingsoft/reactor/pkg/ring"
	"golang.org/x/sys/unix"
	"testing"
)

func newRing(t *testing.T) *ring.Ring {
	r, err := ring.New(8)
	if err != nil {
		t.Skip("io_uring is unavailable:", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
	})
	return r
}

func reapOne(t *testing.T, r *ring.Ring) ring.Completion {
	t.Helper()
	if err := r.Submit(); err != nil {
		t.Fatal(err)
	}
	cqes := make([]ring.Completion, 1)
	for {
		n, err := r.Reap(cqes, true)
		if err != nil {
			t.Fatal(err)
		}
		if n == 1 {
			return cqes[0]
		}
	}
}

func TestRing_WriteAndRead(t *testing.T) {
	r := newRing(t)

	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	if err := r.PrepareWrite(1, fds[1], []byte("hello")); err != nil {
		t.Fatal(err)
	}
	cqe := reapOne(t, r)
	if cqe.UserData != 1 || cqe.Res != 5 {
		t.Fatal("unexpected write completion:", cqe)
	}

	const size = 64
	slab := make([]byte, size*2)
	if err := r.ProvideBuffers(7, 0, slab, size); err != nil {
		t.Fatal(err)
	}
	cqe = reapOne(t, r)
	if cqe.UserData != 0 || cqe.Res < 0 {
		t.Fatal("unexpected provide completion:", cqe)
	}

	if err := r.PrepareRead(2, fds[0], 7, size); err != nil {
		t.Fatal(err)
	}
	cqe = reapOne(t, r)
	if cqe.UserData != 2 || cqe.Res != 5 {
		t.Fatal("unexpected read completion:", cqe)
	}
	bid, ok := cqe.Buffer()
	if !ok {
		t.Fatal("buffer was not selected")
	}
	b := slab[int(bid)*size : int(bid)*size+int(cqe.Res)]
	if !bytes.Equal(b, []byte("hello")) {
		t.Fatal("unexpected data:", string(b))
	}
}

func TestRing_PrepareWriteEmpty(t *testing.T) {
	r := newRing(t)
	if err := r.PrepareWrite(1, 1, nil); !ring.IsEmptyBytes(err) {
		t.Fatal("expected empty bytes error, got", err)
	}
}
