package queue

import (
	"sync/atomic"
)

// RingBuffer is a fixed-size lock-free SPSC queue.
//
// head is advanced only by the producer and tail only by the consumer, so
// each side needs a single atomic store to publish its progress.
type RingBuffer[T any] struct {
	buf  []T
	mask uint64

	// Keep head and tail on separate cache lines.
	_pad0 [56]byte //nolint:unused

	head atomic.Uint64

	_pad1 [56]byte //nolint:unused

	tail atomic.Uint64

	_pad2 [56]byte //nolint:unused

	pushActive atomic.Uint32
	popActive  atomic.Uint32
}

// NewRingBuffer returns a buffer holding at least size items. The size is
// rounded up to a power of two.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}
	return &RingBuffer[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

func (r *RingBuffer[T]) enterPush() {
	if !r.pushActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent Push on SPSC RingBuffer - only one producer allowed")
	}
}

func (r *RingBuffer[T]) enterPop() {
	if !r.popActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent Pop on SPSC RingBuffer - only one consumer allowed")
	}
}

// Push appends v. It returns false if the buffer is full.
func (r *RingBuffer[T]) Push(v T) bool {
	r.enterPush()
	defer r.pushActive.Store(0)

	head := r.head.Load()
	if head-r.tail.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[head&r.mask] = v
	r.head.Store(head + 1)
	return true
}

// Pop removes the oldest item. It returns false if the buffer is empty.
func (r *RingBuffer[T]) Pop() (T, bool) {
	r.enterPop()
	defer r.popActive.Store(0)

	tail := r.tail.Load()
	if tail >= r.head.Load() {
		var zero T
		return zero, false
	}
	v := r.buf[tail&r.mask]
	r.tail.Store(tail + 1)
	return v, true
}

// PopInto moves up to len(dst) of the oldest items into dst and returns
// how many it moved. The items are consumed with a single tail update.
func (r *RingBuffer[T]) PopInto(dst []T) int {
	r.enterPop()
	defer r.popActive.Store(0)

	tail := r.tail.Load()
	avail := r.head.Load() - tail
	n := uint64(len(dst))
	if avail < n {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = r.buf[(tail+i)&r.mask]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// Len returns the number of queued items. It may be stale by the time
// the caller looks at it.
func (r *RingBuffer[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Free returns the number of items that can be pushed without failing.
func (r *RingBuffer[T]) Free() int {
	return len(r.buf) - r.Len()
}

// Cap returns the buffer size.
func (r *RingBuffer[T]) Cap() int {
	return len(r.buf)
}
