//go:build linux

package process

import (
	"github.com/brickingsoft/errors"
	"golang.org/x/sys/unix"
	"runtime"
	"strconv"
)

// SetCPUAffinity pins the calling OS thread to cpu modulo the number of CPUs.
// The caller must hold runtime.LockOSThread for the pin to stay meaningful.
func SetCPUAffinity(cpu int) (err error) {
	if cpu < 0 {
		cpu = 0
	}
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu % runtime.NumCPU())

	if err = unix.SchedSetaffinity(0, &mask); err != nil {
		err = errors.New(
			"set cpu affinity failed",
			errors.WithMeta("pkg", "process"),
			errors.WithMeta("cpu", strconv.Itoa(cpu)),
			errors.WithWrap(err),
		)
		return
	}
	return
}

// CPUAffinity returns the cpus the calling OS thread may run on.
func CPUAffinity() (cpus []int, err error) {
	var mask unix.CPUSet
	if err = unix.SchedGetaffinity(0, &mask); err != nil {
		return
	}
	for i := 0; i < runtime.NumCPU(); i++ {
		if mask.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return
}
