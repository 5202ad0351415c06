package pool

import (
	"sync"
)

// maxPooledSize caps the capacity of buffers returned to the pool so one very
// long article does not pin a large allocation forever.
const maxPooledSize = 1 << 20

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified size
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one if none are available.
// The returned buffer always has zero length.
func (bp *BufferPool) Get() *[]byte {
	buffer := bp.pool.Get().(*[]byte)
	*buffer = (*buffer)[:0]
	return buffer
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > maxPooledSize {
		return
	}
	// Reset buffer length but keep capacity
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// Size returns the initial capacity of new buffers.
func (bp *BufferPool) Size() int {
	return bp.size
}
