//go:build linux

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LinuxScheduler applies attributes with sched_setattr on the calling
// thread.
type LinuxScheduler struct{}

// NewScheduler returns the platform Scheduler.
func NewScheduler() Scheduler {
	return LinuxScheduler{}
}

// Apply sets the calling thread's policy and priority.
func (LinuxScheduler) Apply(a Attr) error {
	var policy uint32
	switch a.Policy {
	case PolicyOther:
		policy = unix.SCHED_NORMAL
	case PolicyFIFO:
		policy = unix.SCHED_FIFO
	case PolicyRR:
		policy = unix.SCHED_RR
	default:
		return fmt.Errorf("%w: %v", ErrInvalidAttr, a.Policy)
	}
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   policy,
		Priority: uint32(a.Priority),
	}
	// pid 0 is the calling thread, not the whole process.
	return unix.SchedSetAttr(0, &attr, 0)
}

// Mlock locks all current and future pages of the process into RAM.
type Mlock struct{}

// NewMemoryLocker returns the platform MemoryLocker.
func NewMemoryLocker() MemoryLocker {
	return Mlock{}
}

func (Mlock) Lock() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}

func (Mlock) Unlock() error {
	return unix.Munlockall()
}
