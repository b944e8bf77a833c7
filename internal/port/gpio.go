package port

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// GPIO drives a single Raspberry Pi GPIO pin (BCM numbering) as the step
// line. Any non-zero byte drives the pin high.
type GPIO struct {
	Pin int

	pin  rpio.Pin
	open bool
}

// NewGPIO returns an unacquired GPIO output on BCM pin.
func NewGPIO(pin int) *GPIO {
	return &GPIO{Pin: pin}
}

func (g *GPIO) String() string {
	return fmt.Sprintf("gpio%d", g.Pin)
}

// Acquire maps the GPIO registers and configures the pin as a low output.
func (g *GPIO) Acquire() error {
	if err := rpio.Open(); err != nil {
		return &PrivilegeError{Port: g.String(), Err: err}
	}
	g.pin = rpio.Pin(g.Pin)
	g.pin.Output()
	g.pin.Low()
	g.open = true
	return nil
}

// WriteByte sets the pin level.
func (g *GPIO) WriteByte(v byte) error {
	if !g.open {
		return ErrNotAcquired
	}
	if v != Low {
		g.pin.High()
	} else {
		g.pin.Low()
	}
	return nil
}

// Release drives the pin low and unmaps the registers.
func (g *GPIO) Release() error {
	if !g.open {
		return nil
	}
	g.pin.Low()
	g.open = false
	return rpio.Close()
}
