// Package queue provides the bounded single-producer single-consumer
// buffers used between the console driver and its I/O goroutines.
//
// RingBuffer is lock-free. Exactly one goroutine may push and exactly one
// may pop; callers with several producers must serialize them. Concurrent
// misuse is caught by guards that panic.
package queue

// Queue is a non-blocking SPSC queue: Push reports false when full and
// Pop reports false when empty.
type Queue[T any] interface {
	Push(T) bool
	Pop() (T, bool)
}

var _ Queue[byte] = (*RingBuffer[byte])(nil)
