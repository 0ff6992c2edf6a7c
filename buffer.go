package reactor

import (
	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/reactor/pkg/bufferpool"
	"github.com/sirupsen/logrus"
)

// PrepareBuffers registers a pool of Options.BuffersPerGroup buffers of size bytes under group.
// Reads started with group are served from buffers the kernel selects out of this pool.
// Preparing a group twice, or with a size below one, panics with ErrMisuse.
func (r *Reactor) PrepareBuffers(group uint16, size int) (err error) {
	if r.closed {
		return ErrClosed
	}
	if _, has := r.groups[group]; has {
		r.misuse("buffer group is already prepared", logrus.Fields{"group": group})
	}
	pool, poolErr := bufferpool.New(size, r.options.BuffersPerGroup)
	if poolErr != nil {
		r.misuse("invalid buffer group", logrus.Fields{"group": group, "size": size, "error": poolErr})
	}
	// every buffer is lent to the kernel until a completion hands it back.
	for {
		if _, _, ok := pool.Acquire(); !ok {
			break
		}
	}
	if err = r.kernel.ProvideBuffers(group, 0, pool.Slab(), size); err != nil {
		err = errors.New(
			"prepare buffers failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, "provide_buffers"),
			errors.WithWrap(err),
		)
		return
	}
	r.groups[group] = pool
	return
}

// recycle returns bid to its pool and hands every free buffer of the group back to the kernel.
func (r *Reactor) recycle(group uint16, bid uint16) {
	pool := r.groups[group]
	pool.Release(bid)
	for {
		id, b, ok := pool.Acquire()
		if !ok {
			return
		}
		if err := r.kernel.ProvideBuffers(group, id, b, pool.Size()); err != nil {
			pool.Release(id)
			r.logger.WithFields(logrus.Fields{"group": group, "bid": id, "error": err}).Warn("provide buffer failed")
			return
		}
	}
}
