// Package port is the hardware output boundary: the single byte-wide line
// that carries the step pulse.
//
// Access to the line is privileged and process-scoped. It is acquired once
// before the control thread exists and released exactly once on every exit
// path; Guard enforces the pairing.
package port

import (
	"errors"
	"fmt"
	"sync"
)

// Levels written to the line.
const (
	Low  byte = 0x00
	High byte = 0xff
)

// ErrUnsupported is wrapped in a PrivilegeError when the platform has no
// way to reach the requested hardware.
var ErrUnsupported = errors.New("port: not supported on this platform")

// ErrNotAcquired is returned by writes before Acquire or after Release.
var ErrNotAcquired = errors.New("port: not acquired")

// Port is a privileged byte-wide output.
type Port interface {
	// Acquire obtains exclusive access. Must succeed before WriteByte.
	Acquire() error
	// WriteByte drives the line.
	WriteByte(v byte) error
	// Release gives access back.
	Release() error
	// String names the port for logs.
	String() string
}

// PrivilegeError reports that access to the output could not be obtained.
type PrivilegeError struct {
	Port string
	Err  error
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("port: cannot acquire %s: %v", e.Port, e.Err)
}

func (e *PrivilegeError) Unwrap() error {
	return e.Err
}

// Guard holds an acquired Port and releases it at most once.
type Guard struct {
	p    Port
	once sync.Once
	err  error
}

// Acquire acquires p and returns a Guard for it. Any failure is returned as
// a *PrivilegeError and leaves nothing to release.
func Acquire(p Port) (*Guard, error) {
	if err := p.Acquire(); err != nil {
		var pe *PrivilegeError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &PrivilegeError{Port: p.String(), Err: err}
	}
	return &Guard{p: p}, nil
}

// WriteByte drives the guarded line.
func (g *Guard) WriteByte(v byte) error {
	return g.p.WriteByte(v)
}

// Release releases the port on the first call and returns that call's
// result on every call.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.p.Release()
	})
	return g.err
}

func (g *Guard) String() string {
	return g.p.String()
}
