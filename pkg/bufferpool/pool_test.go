package bufferpool_test

import (
	"github.com/brickingsoft/reactor/pkg/bufferpool"
	"testing"
)

func TestNew(t *testing.T) {
	if _, err := bufferpool.New(0, 1); err == nil {
		t.Error("expected size error")
	}
	if _, err := bufferpool.New(16, 0); err == nil {
		t.Error("expected count error")
	}
	if _, err := bufferpool.New(16, bufferpool.MaxCount+1); err == nil {
		t.Error("expected count error")
	}
	p, err := bufferpool.New(16, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size() != 16 || p.Count() != 4 || p.Free() != 4 || len(p.Slab()) != 64 {
		t.Fatal("unexpected pool shape")
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	p, _ := bufferpool.New(8, 3)
	for want := uint16(0); want < 3; want++ {
		id, b, ok := p.Acquire()
		if !ok || id != want {
			t.Fatal("acquire:", id, ok, "want", want)
		}
		if len(b) != 8 || cap(b) != 8 {
			t.Fatal("unexpected buffer shape:", len(b), cap(b))
		}
	}
	if _, _, ok := p.Acquire(); ok {
		t.Fatal("expected exhausted pool")
	}

	b := p.Slice(1)
	copy(b, "abcdefgh")
	p.Release(1)
	if p.Free() != 1 {
		t.Fatal("expected one free buffer")
	}
	id, b2, ok := p.Acquire()
	if !ok || id != 1 {
		t.Fatal("expected buffer 1 to be reused, got", id)
	}
	// reuse observes the previous contents, nothing is cleared.
	if string(b2) != "abcdefgh" {
		t.Fatal("unexpected contents:", string(b2))
	}
	if &p.Slab()[8] != &b2[0] {
		t.Fatal("buffer does not alias the slab")
	}
}

func TestPool_ReleaseNotAcquired(t *testing.T) {
	p, _ := bufferpool.New(8, 2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	p.Release(0)
}
