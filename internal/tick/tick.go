// Package tick provides the absolute-deadline period clock that paces the
// control loop.
//
// The clock never sleeps "for a duration since the last wake". It keeps an
// always-advancing absolute deadline and sleeps until it, so time spent in
// the per-period work does not accumulate as drift:
//
//   - Clock: deadline bookkeeping (Start, Advance, SleepUntilDeadline)
//   - Source: where "now" comes from and how to block until a deadline
//   - Monotonic: CLOCK_MONOTONIC + clock_nanosleep(TIMER_ABSTIME) on Linux
//   - Manual: a caller-driven Source for tests and simulations
package tick

import (
	"errors"
	"time"
)

const nsPerSec = int64(time.Second)

// ErrInvalidPeriod is returned by Start when the period is not positive.
var ErrInvalidPeriod = errors.New("tick: period must be positive")

// Timespec is an absolute point on the monotonic clock, split the same way
// the kernel splits it. Nsec is kept in [0, 1e9).
type Timespec struct {
	Sec  int64
	Nsec int64
}

// FromNanoseconds splits a nanosecond count into a Timespec.
func FromNanoseconds(ns int64) Timespec {
	return Timespec{Sec: ns / nsPerSec, Nsec: ns % nsPerSec}
}

// Add returns t+d, carrying whole seconds out of Nsec.
//
// d must not be negative. For d <= 1s a single carry is enough.
func (t Timespec) Add(d time.Duration) Timespec {
	t.Nsec += int64(d)
	for t.Nsec >= nsPerSec {
		t.Sec++
		t.Nsec -= nsPerSec
	}
	return t
}

// Sub returns the duration t-u.
func (t Timespec) Sub(u Timespec) time.Duration {
	return time.Duration((t.Sec-u.Sec)*nsPerSec + (t.Nsec - u.Nsec))
}

// Before reports whether t is strictly earlier than u.
func (t Timespec) Before(u Timespec) bool {
	return t.Sec < u.Sec || (t.Sec == u.Sec && t.Nsec < u.Nsec)
}

// Nanoseconds returns t as a single nanosecond count.
func (t Timespec) Nanoseconds() int64 {
	return t.Sec*nsPerSec + t.Nsec
}

// PeriodInfo is the clock's schedule: the next absolute deadline and the
// fixed period length used to advance it.
type PeriodInfo struct {
	Next   Timespec
	Period time.Duration
}

// Source supplies monotonic time and absolute-deadline sleeps.
//
// Implementations are used from a single goroutine (the control loop).
type Source interface {
	// Now returns the current monotonic time.
	Now() Timespec

	// SleepUntil blocks until the absolute deadline has been reached.
	// It returns immediately if the deadline is already in the past.
	SleepUntil(deadline Timespec) error
}
