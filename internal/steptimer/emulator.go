package steptimer

// Emulator is a timer/counter in compare-match mode. It is owned by a
// single control loop and not safe for concurrent use.
type Emulator struct {
	state   State
	decider Decider
}

// New returns a disarmed emulator that dispatches to d.
func New(d Decider) *Emulator {
	return &Emulator{decider: d}
}

// Arm enables the timer with the given compare value and clears the
// counter. A zero compare leaves the timer effectively disabled.
func (e *Emulator) Arm(compare uint32) {
	e.state = State{Registers: Registers{Enabled: true, Compare: compare}}
}

// Load applies a full register set and clears the counter.
func (e *Emulator) Load(r Registers) {
	e.state = State{Registers: r}
}

// Disarm clears the enable bit and the counter.
func (e *Emulator) Disarm() {
	e.state.Enabled = false
	e.state.Count = 0
}

// State returns a copy of the current timer state.
func (e *Emulator) State() State {
	return e.state
}

// Tick advances the timer by one clock.
//
// While disabled the tick is a no-op and the counter stays at zero. While
// enabled the counter increments; when it reaches the compare value the
// decider runs and the counter clears whatever the decision was. The
// decision and true are returned on a compare match, otherwise false.
func (e *Emulator) Tick() (Decision, bool) {
	if !e.state.Running() {
		e.state.Count = 0
		return Decision{}, false
	}

	e.state.Count++
	if e.state.Count < e.state.Compare {
		return Decision{}, false
	}

	d := e.decider.Decide()
	e.state.Count = 0
	if d.Compare > 0 {
		e.state.Compare = d.Compare
	}
	if d.Disable {
		e.state.Enabled = false
	}
	return d, true
}
