// Package bufferpool provides a fixed number of equally sized buffers carved from one slab.
// Buffers are addressed by a 16-bit id, the same id the kernel reports for a selected buffer.
package bufferpool

import (
	"strconv"

	"github.com/brickingsoft/errors"
)

const MaxCount = 1 << 16

var (
	ErrInvalidSize  = errors.Define("invalid buffer size")
	ErrInvalidCount = errors.Define("invalid buffer count")
)

func New(size int, count int) (*Pool, error) {
	if size < 1 {
		return nil, errors.From(ErrInvalidSize, errors.WithMeta("size", strconv.Itoa(size)))
	}
	if count < 1 || count > MaxCount {
		return nil, errors.From(ErrInvalidCount, errors.WithMeta("count", strconv.Itoa(count)))
	}
	p := &Pool{
		size: size,
		slab: make([]byte, size*count),
		free: make([]uint16, count),
		used: make([]bool, count),
	}
	// lowest id on top
	for i := 0; i < count; i++ {
		p.free[i] = uint16(count - 1 - i)
	}
	return p, nil
}

type Pool struct {
	size int
	slab []byte
	free []uint16
	used []bool
}

func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) Count() int {
	return len(p.used)
}

// Free returns the number of buffers that can be acquired.
func (p *Pool) Free() int {
	return len(p.free)
}

// Slab returns the memory backing every buffer, buffer id i starts at i*Size().
func (p *Pool) Slab() []byte {
	return p.slab
}

func (p *Pool) Acquire() (id uint16, b []byte, ok bool) {
	n := len(p.free)
	if n == 0 {
		return
	}
	id = p.free[n-1]
	p.free = p.free[:n-1]
	p.used[id] = true
	b, ok = p.Slice(id), true
	return
}

// Release returns id to the pool. Releasing a buffer that is not acquired panics.
func (p *Pool) Release(id uint16) {
	if int(id) >= len(p.used) || !p.used[id] {
		panic("bufferpool: release of buffer " + strconv.Itoa(int(id)) + " that is not acquired")
	}
	p.used[id] = false
	p.free = append(p.free, id)
}

// Slice returns the full-size buffer of id.
func (p *Pool) Slice(id uint16) []byte {
	off := int(id) * p.size
	return p.slab[off : off+p.size : off+p.size]
}
