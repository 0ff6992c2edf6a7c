package ring

// Completion flags as reported by the kernel in cqe.flags.
const (
	CQEFBuffer uint32 = 1 << iota
	CQEFMore
	CQEFSockNonEmpty
	CQEFNotif
)

// CQEBufferShift is the shift of the selected buffer id inside cqe.flags.
const CQEBufferShift = 16

// Completion is one reaped completion queue entry.
type Completion struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

// More reports whether the kernel keeps the operation armed (multishot).
func (c Completion) More() bool {
	return c.Flags&CQEFMore != 0
}

// Buffer returns the id of the kernel-selected buffer, if any.
func (c Completion) Buffer() (bid uint16, ok bool) {
	if c.Flags&CQEFBuffer == 0 {
		return
	}
	bid, ok = uint16(c.Flags>>CQEBufferShift), true
	return
}
