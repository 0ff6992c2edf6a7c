package reactor

import (
	"strconv"

	"github.com/brickingsoft/errors"
)

var (
	ErrClosed             = errors.Define("reactor: shut down")
	ErrBusy               = errors.Define("reactor: operations are in flight")
	ErrClosing            = errors.Define("reactor: descriptor is closing")
	ErrInvalidDescriptor  = errors.Define("reactor: invalid descriptor")
	ErrReadActive         = errors.Define("reactor: read is already active")
	ErrNoActiveRead       = errors.Define("reactor: no active read")
	ErrUnknownBufferGroup = errors.Define("reactor: unknown buffer group")
	ErrEmptyBytes         = errors.Define("reactor: empty bytes")
	ErrNilHandler         = errors.Define("reactor: nil handler")
	ErrMisuse             = errors.Define("reactor: misuse")
)

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

func IsClosing(err error) bool {
	return errors.Is(err, ErrClosing)
}

func IsReadActive(err error) bool {
	return errors.Is(err, ErrReadActive)
}

func IsNoActiveRead(err error) bool {
	return errors.Is(err, ErrNoActiveRead)
}

func IsMisuse(err error) bool {
	return errors.Is(err, ErrMisuse)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "reactor"
	errMetaFdKey  = "fd"
)

const (
	errMetaOpKey = "op"
)

func withFd(err error, fd int) error {
	return errors.From(err, errors.WithMeta(errMetaFdKey, strconv.Itoa(fd)))
}
