// Package recorder keeps the bounded log of step events produced during a
// run.
//
// The log is allocated up front and written only by the control thread.
// Nothing else reads it until the thread has been joined; the join is the
// synchronization point, so the log itself carries no lock.
package recorder

import (
	"errors"

	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
	"github.com/randomizedcoder/rt-stepper/internal/tick"
)

// DefaultCapacity is the number of step events recorded per run.
const DefaultCapacity = 800

// ErrCapacityExceeded is returned by Append once the log is full. The
// control loop stops at capacity, so seeing this means a caller skipped
// the Full check.
var ErrCapacityExceeded = errors.New("recorder: run log capacity exceeded")

// ErrInvalidCapacity is returned by New for a capacity below one.
var ErrInvalidCapacity = errors.New("recorder: capacity must be positive")

// StepEvent is one recorded step decision.
type StepEvent struct {
	Seq     uint32
	Time    tick.Timespec
	Compare uint32
	Outcome steptimer.Outcome
}

// Log is a fixed-capacity, append-only sequence of StepEvents.
type Log struct {
	events []StepEvent
}

// New allocates a log that holds exactly capacity events.
func New(capacity int) (*Log, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Log{events: make([]StepEvent, 0, capacity)}, nil
}

// Append adds ev to the log. Seq is assigned by the log and is the
// event's index, so it is strictly increasing.
func (l *Log) Append(ev StepEvent) error {
	if len(l.events) == cap(l.events) {
		return ErrCapacityExceeded
	}
	ev.Seq = uint32(len(l.events))
	l.events = append(l.events, ev)
	return nil
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// Cap returns the log's fixed capacity.
func (l *Log) Cap() int {
	return cap(l.events)
}

// Full reports whether another Append would fail.
func (l *Log) Full() bool {
	return len(l.events) == cap(l.events)
}

// Events returns the recorded events. The slice aliases the log; callers
// must treat it as read-only and only use it after the writer is done.
func (l *Log) Events() []StepEvent {
	return l.events[:len(l.events):len(l.events)]
}

// Timestamps returns the event times in nanoseconds, in record order.
func (l *Log) Timestamps() []int64 {
	ts := make([]int64, len(l.events))
	for i := range l.events {
		ts[i] = l.events[i].Time.Nanoseconds()
	}
	return ts
}
