// Package pulse shapes step decisions into fixed-width output pulses.
//
// A pulse is measured in control-loop ticks. Triggering opens a window of
// the given width; each tick closes it by one; the tick on which it reaches
// zero reports that the line must be deasserted.
package pulse

// DefaultWidth is the step pulse width in ticks.
const DefaultWidth = 5

// Window tracks how many ticks the output line stays active.
// The zero value is an idle line.
type Window struct {
	remaining uint32
}

// Trigger opens a window of width ticks. It overwrites, never extends, a
// window that is still open.
func (w *Window) Trigger(width uint32) {
	w.remaining = width
}

// Tick consumes one tick of an open window. It returns true exactly once
// per window: on the tick that closes it.
func (w *Window) Tick() (deassert bool) {
	if w.remaining == 0 {
		return false
	}
	w.remaining--
	return w.remaining == 0
}

// Active reports whether the output line is logically asserted.
func (w *Window) Active() bool {
	return w.remaining > 0
}

// Remaining returns the ticks left in the current window.
func (w *Window) Remaining() uint32 {
	return w.remaining
}
