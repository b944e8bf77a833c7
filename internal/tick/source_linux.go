//go:build linux

package tick

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Monotonic reads CLOCK_MONOTONIC and sleeps with
// clock_nanosleep(CLOCK_MONOTONIC, TIMER_ABSTIME).
type Monotonic struct{}

// NewMonotonic returns the platform monotonic Source.
func NewMonotonic() Monotonic {
	return Monotonic{}
}

// Now returns the current CLOCK_MONOTONIC time.
func (Monotonic) Now() Timespec {
	var ts unix.Timespec
	// CLOCK_MONOTONIC is always present on Linux; the call cannot fail
	// with a valid pointer.
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	sec, nsec := ts.Unix()
	return Timespec{Sec: sec, Nsec: nsec}
}

// SleepUntil sleeps until the absolute deadline.
//
// The Go runtime delivers signals to its threads (preemption among them),
// so EINTR is routine. The sleep is simply reissued against the same
// absolute deadline, which cannot introduce drift.
func (Monotonic) SleepUntil(deadline Timespec) error {
	req := unix.NsecToTimespec(deadline.Nanoseconds())
	for {
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &req, nil)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
