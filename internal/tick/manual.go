package tick

import (
	"sync"
	"time"
)

// Manual is a Source whose time only moves when told to.
//
// SleepUntil jumps the clock straight to the deadline (never backwards),
// which makes period-accurate loops deterministic under test. Work done
// inside a period can be simulated with Spend.
type Manual struct {
	mu     sync.Mutex
	now    Timespec
	sleeps int

	// OnSleep, if set, runs after every SleepUntil with the new time.
	// It is called without the internal lock held.
	OnSleep func(now Timespec)
}

// NewManual creates a Manual source starting at start.
func NewManual(start Timespec) *Manual {
	return &Manual{now: start}
}

// Now returns the current simulated time.
func (m *Manual) Now() Timespec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// SleepUntil moves simulated time to deadline if it lies in the future.
func (m *Manual) SleepUntil(deadline Timespec) error {
	m.mu.Lock()
	if m.now.Before(deadline) {
		m.now = deadline
	}
	m.sleeps++
	now, hook := m.now, m.OnSleep
	m.mu.Unlock()

	if hook != nil {
		hook(now)
	}
	return nil
}

// Spend advances simulated time by d, standing in for work done by the
// caller.
func (m *Manual) Spend(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Sleeps returns the number of SleepUntil calls so far.
func (m *Manual) Sleeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps
}
