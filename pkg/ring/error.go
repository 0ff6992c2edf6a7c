package ring

import "github.com/brickingsoft/errors"

var (
	ErrSubmissionQueueFull = errors.Define("submission queue is full")
	ErrEmptyBytes          = errors.Define("empty bytes")
)

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "ring"
)

const (
	errMetaOpKey     = "op"
	errMetaOpSetup   = "setup"
	errMetaOpSubmit  = "submit"
	errMetaOpWait    = "wait"
	errMetaOpProvide = "provide_buffers"
)

func IsSubmissionQueueFull(err error) bool {
	return errors.Is(err, ErrSubmissionQueueFull)
}

func IsEmptyBytes(err error) bool {
	return errors.Is(err, ErrEmptyBytes)
}
