package rt

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/randomizedcoder/rt-stepper/internal/cancel"
)

// Scheduler applies scheduling attributes to the calling OS thread.
type Scheduler interface {
	Apply(a Attr) error
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(a Attr) error

func (f SchedulerFunc) Apply(a Attr) error { return f(a) }

// MemoryLocker pins process memory so the loop never takes a page fault.
type MemoryLocker interface {
	Lock() error
	Unlock() error
}

// LockMemory locks process memory through l, wrapping a failure in a
// *ResourceError.
func LockMemory(l MemoryLocker) error {
	if err := l.Lock(); err != nil {
		return &ResourceError{Op: "mlockall", Err: err}
	}
	return nil
}

// State is the lifecycle state of a Thread.
type State int

const (
	NotStarted State = iota
	Configured
	Running
	Cancelling
	Terminated
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Cancelling:
		return "cancelling"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Body is the work a Thread runs once its attributes are in effect.
type Body func(flags *cancel.Flags) error

// Thread runs a Body on a dedicated OS thread with real-time attributes.
//
//	NotStarted -> Configured -> Running -> Cancelling -> Terminated
//
// Join is the only way to observe the body's result, and the only
// happens-before edge between the body's writes and the caller.
type Thread struct {
	mu    sync.Mutex
	state State
	attr  Attr

	sched Scheduler
	flags *cancel.Flags
	log   zerolog.Logger

	startErr chan error
	done     chan struct{}
	err      error
}

// NewThread creates a Thread that applies attributes through sched and
// signals through flags.
func NewThread(sched Scheduler, flags *cancel.Flags, log zerolog.Logger) *Thread {
	return &Thread{
		sched:    sched,
		flags:    flags,
		log:      log,
		startErr: make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Configure validates a and records it for Start.
func (t *Thread) Configure(a Attr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != NotStarted && t.state != Configured {
		return fmt.Errorf("%w: configure while %v", ErrState, t.state)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	t.attr = a
	t.state = Configured
	return nil
}

// Start launches body and blocks until the thread has either applied its
// attributes and marked itself started, or failed to. A failure is a
// *ConfigError and body never runs.
func (t *Thread) Start(body Body) error {
	t.mu.Lock()
	if t.state != Configured {
		st := t.state
		t.mu.Unlock()
		return fmt.Errorf("%w: start while %v", ErrState, st)
	}
	attr := t.attr
	t.mu.Unlock()

	go t.run(attr, body)

	select {
	case <-t.flags.Started():
		t.setState(Running)
		t.log.Debug().
			Str("policy", attr.Policy.String()).
			Int("priority", attr.Priority).
			Msg("control thread running")
		return nil
	case err := <-t.startErr:
		<-t.done
		t.setState(Terminated)
		return err
	}
}

func (t *Thread) run(attr Attr, body Body) {
	defer close(t.done)

	// Never unlocked: the thread exits with the goroutine rather than
	// returning to the pool with real-time priority.
	runtime.LockOSThread()

	if attr.Inherit == InheritExplicit {
		if err := t.sched.Apply(attr); err != nil {
			t.startErr <- &ConfigError{Step: "setschedparam", Err: err}
			return
		}
	}

	defer func() {
		if r := recover(); r != nil {
			t.err = &JoinError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	t.flags.MarkStarted()
	if err := body(t.flags); err != nil {
		t.err = &JoinError{Err: err}
	}
}

// Cancel asks the body to stop. It does not wait; use Join.
func (t *Thread) Cancel() {
	t.flags.Cancel()
	t.mu.Lock()
	if t.state == Running {
		t.state = Cancelling
	}
	t.mu.Unlock()
}

// Join waits for the thread to finish and returns a *JoinError if it
// ended abnormally.
func (t *Thread) Join() error {
	t.mu.Lock()
	st := t.state
	t.mu.Unlock()
	if st == NotStarted || st == Configured {
		return fmt.Errorf("%w: join while %v", ErrState, st)
	}
	<-t.done
	t.setState(Terminated)
	return t.err
}

// Done is closed when the thread has finished.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// State returns the current lifecycle state.
func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Thread) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
