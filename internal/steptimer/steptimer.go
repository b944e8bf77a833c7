// Package steptimer emulates a microcontroller timer/counter running in
// compare-match mode.
//
// The hardware being stood in for has an enable bit, an output-compare
// register and a counter that increments once per timer clock; when the
// counter reaches the compare value an interrupt fires and the counter
// clears. Here the "timer clock" is one period of the control loop, the
// registers are a plain value owned by that loop, and the interrupt is a
// call to a Decider.
package steptimer

import "fmt"

// Outcome is what a compare-match decision asks the output stage to do.
type Outcome uint8

const (
	// NoAction leaves the output alone.
	NoAction Outcome = iota
	// Forward emits one step in the forward (clockwise) direction.
	Forward
	// Reverse emits one step in the reverse (counter-clockwise) direction.
	Reverse
)

func (o Outcome) String() string {
	switch o {
	case NoAction:
		return "none"
	case Forward:
		return "cw"
	case Reverse:
		return "ccw"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Steps reports whether the outcome produces a step pulse.
func (o Outcome) Steps() bool {
	return o == Forward || o == Reverse
}

// Decision is the result of one compare-match dispatch.
type Decision struct {
	Outcome Outcome
	// Compare, when non-zero, is loaded into the compare register for the
	// next interval.
	Compare uint32
	// Disable clears the enable bit, stopping the timer.
	Disable bool
}

// Decider is called on every compare match. It plays the part of the
// interrupt service routine.
type Decider interface {
	Decide() Decision
}

// DeciderFunc adapts a function to a Decider.
type DeciderFunc func() Decision

// Decide calls f.
func (f DeciderFunc) Decide() Decision {
	return f()
}

// Registers is the software copy of the timer's control registers.
type Registers struct {
	Enabled bool
	Compare uint32
}

// Running reports whether the timer is counting.
func (r Registers) Running() bool {
	return r.Enabled && r.Compare > 0
}

// State is the full emulated timer: registers plus the counter.
type State struct {
	Registers
	Count uint32
}
