package reactor

type opKind uint8

const (
	opRead opKind = iota
	opWrite
	opSendAll
	opClose
	opCancel
)

func (kind opKind) String() string {
	switch kind {
	case opRead:
		return "read"
	case opWrite:
		return "write"
	case opSendAll:
		return "send_all"
	case opClose:
		return "close"
	case opCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

const (
	opFlagRepeat uint8 = 1 << iota
	opFlagUseRecv
	opFlagCancelled
	opFlagMultishot
	// read handler returned false or saw an error, it must not be called again.
	opFlagStopped
)

// the low byte of an operation id is its kind, the rest is a sequence.
// id 0 is never allocated.
const opKindMask = 0xff

func kindOf(id uint64) opKind {
	return opKind(id & opKindMask)
}

type operation struct {
	id     uint64
	fd     int
	group  uint16
	flags  uint8
	b      []byte
	offset int
	target uint64

	readHandler    ReadHandler
	writeHandler   WriteHandler
	sendAllHandler SendAllHandler
	closeHandler   CloseHandler
}

func (op *operation) kind() opKind {
	return kindOf(op.id)
}

func (op *operation) reset() {
	op.id = 0
	op.fd = -1
	op.group = 0
	op.flags = 0
	op.b = nil
	op.offset = 0
	op.target = 0
	op.readHandler = nil
	op.writeHandler = nil
	op.sendAllHandler = nil
	op.closeHandler = nil
}

const maxFreeOperations = 1024

func (r *Reactor) acquireOperation(kind opKind, fd int) *operation {
	var op *operation
	if n := len(r.freeOps); n > 0 {
		op = r.freeOps[n-1]
		r.freeOps[n-1] = nil
		r.freeOps = r.freeOps[:n-1]
	} else {
		op = &operation{}
	}
	r.seq++
	op.id = r.seq<<8 | uint64(kind)
	op.fd = fd
	r.ops[op.id] = op
	return op
}

func (r *Reactor) releaseOperation(op *operation) {
	delete(r.ops, op.id)
	op.reset()
	if len(r.freeOps) < maxFreeOperations {
		r.freeOps = append(r.freeOps, op)
	}
}
