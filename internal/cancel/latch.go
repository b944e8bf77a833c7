package cancel

import "sync"

// Latch is a one-shot completion signal. Once opened it stays open.
type Latch struct {
	once sync.Once
	ch   chan struct{}
}

// NewLatch creates an unopened Latch.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Open signals the latch. Only the first call has an effect.
func (l *Latch) Open() {
	l.once.Do(func() { close(l.ch) })
}

// C returns a channel that is closed once the latch is opened.
func (l *Latch) C() <-chan struct{} {
	return l.ch
}

// IsOpen reports whether Open has been called.
func (l *Latch) IsOpen() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}
