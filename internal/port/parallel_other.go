//go:build !linux

package port

import "fmt"

// DefaultBase is the I/O address of the first PC parallel port (LPT1).
const DefaultBase = 0x378

// DefaultDevice is unused off Linux.
const DefaultDevice = ""

// Parallel is unavailable off Linux; Acquire always fails.
type Parallel struct {
	Base   uint16
	Device string
}

// NewParallel returns a port that cannot be acquired on this platform.
func NewParallel(base uint16) *Parallel {
	return &Parallel{Base: base}
}

func (p *Parallel) String() string {
	return fmt.Sprintf("parallel@0x%x", p.Base)
}

func (p *Parallel) Acquire() error {
	return &PrivilegeError{Port: p.String(), Err: ErrUnsupported}
}

func (p *Parallel) WriteByte(v byte) error {
	return ErrNotAcquired
}

func (p *Parallel) Release() error {
	return nil
}
