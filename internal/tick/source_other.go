//go:build !linux

package tick

import "time"

// base anchors Go's monotonic reading so Now can be expressed as a Timespec.
var base = time.Now()

// Monotonic approximates an absolute-deadline sleep with Go's monotonic
// clock. Resolution is whatever time.Sleep gives on this platform.
type Monotonic struct{}

// NewMonotonic returns the platform monotonic Source.
func NewMonotonic() Monotonic {
	return Monotonic{}
}

// Now returns the time elapsed since process start.
func (Monotonic) Now() Timespec {
	return FromNanoseconds(int64(time.Since(base)))
}

// SleepUntil sleeps until the deadline, measured against Now.
func (m Monotonic) SleepUntil(deadline Timespec) error {
	if d := deadline.Sub(m.Now()); d > 0 {
		time.Sleep(d)
	}
	return nil
}
