//go:build !linux

package rt

// UnsupportedScheduler stands in where the platform exposes no real-time
// scheduling class. Only PolicyOther, which needs no change, succeeds.
type UnsupportedScheduler struct{}

// NewScheduler returns the platform Scheduler.
func NewScheduler() Scheduler {
	return UnsupportedScheduler{}
}

func (UnsupportedScheduler) Apply(a Attr) error {
	if a.Policy == PolicyOther {
		return nil
	}
	return ErrUnsupported
}

// NoMlock reports that memory cannot be locked here.
type NoMlock struct{}

// NewMemoryLocker returns the platform MemoryLocker.
func NewMemoryLocker() MemoryLocker {
	return NoMlock{}
}

func (NoMlock) Lock() error   { return ErrUnsupported }
func (NoMlock) Unlock() error { return nil }
