//go:build linux

package port

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// DefaultBase is the I/O address of the first PC parallel port (LPT1).
const DefaultBase = 0x378

// DefaultDevice exposes the I/O port space as a file.
const DefaultDevice = "/dev/port"

// span is the number of registers of a parallel port (data, status,
// control, EPP address).
const span = 4

// Parallel drives the data register of a PC parallel port.
//
// Permission for the register range is taken with ioperm where the
// architecture has it; bytes are written through /dev/port at the
// register's offset, which needs no inline assembly.
type Parallel struct {
	Base   uint16
	Device string

	fd  int
	buf [1]byte
}

// NewParallel returns an unacquired parallel port at base.
func NewParallel(base uint16) *Parallel {
	return &Parallel{Base: base, Device: DefaultDevice, fd: -1}
}

func (p *Parallel) String() string {
	return fmt.Sprintf("parallel@0x%x", p.Base)
}

// Acquire enables access to the port's registers and opens the device.
func (p *Parallel) Acquire() error {
	if err := ioperm(int(p.Base), span, true); err != nil {
		return &PrivilegeError{Port: p.String(), Err: fmt.Errorf("ioperm: %w", err)}
	}
	fd, err := unix.Open(p.Device, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		_ = ioperm(int(p.Base), span, false)
		return &PrivilegeError{Port: p.String(), Err: fmt.Errorf("open %s: %w", p.Device, err)}
	}
	p.fd = fd
	return nil
}

// WriteByte writes v to the data register.
func (p *Parallel) WriteByte(v byte) error {
	if p.fd < 0 {
		return ErrNotAcquired
	}
	p.buf[0] = v
	_, err := unix.Pwrite(p.fd, p.buf[:], int64(p.Base))
	return err
}

// Release closes the device and drops the register permission.
func (p *Parallel) Release() error {
	var err error
	if p.fd >= 0 {
		err = multierr.Append(err, unix.Close(p.fd))
		p.fd = -1
	}
	return multierr.Append(err, ioperm(int(p.Base), span, false))
}
