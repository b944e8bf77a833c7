package cancel

// Flags is the control state shared by the orchestrator and the control
// thread. It is built by the orchestrator and passed by reference into the
// thread's entry point; nothing about it is global.
//
// running: written by Cancel (any goroutine), read by the control loop.
// started: opened once by the control thread, waited on by the orchestrator.
type Flags struct {
	stop    AtomicCanceler
	started *Latch
}

var _ Canceler = (*Flags)(nil)

// NewFlags returns flags in the running, not-yet-started state.
func NewFlags() *Flags {
	return &Flags{started: NewLatch()}
}

// Running reports whether the loop should keep going.
func (f *Flags) Running() bool {
	return !f.stop.Done()
}

// Done reports whether a stop has been requested.
func (f *Flags) Done() bool {
	return f.stop.Done()
}

// Cancel requests a cooperative stop. The loop notices at its next period
// boundary.
func (f *Flags) Cancel() {
	f.stop.Cancel()
}

// MarkStarted is called by the control thread once it is configured and
// about to enter its loop.
func (f *Flags) MarkStarted() {
	f.started.Open()
}

// Started returns a channel closed once the control thread has started.
func (f *Flags) Started() <-chan struct{} {
	return f.started.C()
}

// HasStarted reports whether MarkStarted has been called.
func (f *Flags) HasStarted() bool {
	return f.started.IsOpen()
}
