//go:build linux

package ring

// kernel abi values that giouring does not export under a stable name.
const (
	// IOSQE_BUFFER_SELECT
	sqeBufferSelect uint8 = 1 << 5
	// IORING_RECV_MULTISHOT
	recvMultishot uint16 = 1 << 1
	// IORING_OP_PROVIDE_BUFFERS
	opProvideBuffers uint8 = 31
)

// current file position for read and write.
const currentPosition = ^uint64(0)
