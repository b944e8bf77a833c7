package ramp

import (
	"fmt"
	"math"

	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
)

// Phase is the state of a linear ramp.
type Phase int

const (
	Stop Phase = iota
	Accel
	Run
	Decel
)

func (p Phase) String() string {
	switch p {
	case Stop:
		return "stop"
	case Accel:
		return "accel"
	case Run:
		return "run"
	case Decel:
		return "decel"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Fixed-point constants of the ramp equations, in timer ticks.
var (
	alpha     = 2 * 3.14159 / StepsPerRev
	aTx100    = int64(alpha * TimerFreq * 100)
	tFreq148  = int64(math.Floor(TimerFreq * 0.676 / 100))
	aSq       = int64(alpha * 2 * 1e10)
	ax20000   = int64(alpha * 20000)
	firstTick = uint32(10)
)

// Linear drives a move with a linear speed profile: constant
// acceleration up to the top speed, constant speed, constant deceleration
// down to a stop. Delays between steps are computed incrementally with a
// Taylor-series approximation and a carried remainder.
type Linear struct {
	phase Phase
	dir   steptimer.Outcome

	delay          int64 // ticks until the next step
	minDelay       int64 // delay at top speed
	decelStart     int64 // step at which deceleration begins
	decelVal       int64 // negative step count of the deceleration
	accelCount     int64
	lastAccelDelay int64
	stepCount      int64
	rest           int64
}

var _ Planner = (*Linear)(nil)

// NewLinear returns a stopped planner.
func NewLinear() *Linear {
	return &Linear{}
}

// Move plans a move of steps. It returns the compare value for the first
// interval, which is short so the first step is issued promptly.
func (l *Linear) Move(steps int, accel, decel, speed uint32) (uint32, error) {
	if accel == 0 || decel == 0 || speed == 0 {
		return 0, ErrZeroRate
	}
	if steps == 0 {
		return 0, ErrNoMotion
	}

	l.dir = steptimer.Forward
	if steps < 0 {
		l.dir = steptimer.Reverse
		steps = -steps
	}
	l.stepCount = 0
	l.rest = 0
	l.accelCount = 0
	l.lastAccelDelay = 0

	if steps == 1 {
		// Single step: go straight to a one-step deceleration.
		l.accelCount = -1
		l.phase = Decel
		l.delay = 1000
		l.decelStart = 0
		return firstTick, nil
	}

	n := int64(steps)
	a, d, s := int64(accel), int64(decel), int64(speed)

	l.minDelay = aTx100 / s
	l.delay = tFreq148 * int64(math.Sqrt(float64(aSq/a))) / 100

	// Steps to reach top speed, and steps before deceleration must start.
	maxSpeedLim := s * s / (ax20000 * a / 100)
	if maxSpeedLim == 0 {
		maxSpeedLim = 1
	}
	accelLim := n * d / (a + d)
	if accelLim == 0 {
		accelLim = 1
	}

	if accelLim <= maxSpeedLim {
		l.decelVal = accelLim - n
	} else {
		l.decelVal = -(maxSpeedLim * a / d)
	}
	if l.decelVal == 0 {
		l.decelVal = -1
	}
	l.decelStart = n + l.decelVal

	if l.delay <= l.minDelay {
		l.delay = l.minDelay
		l.phase = Run
	} else {
		l.phase = Accel
	}
	return firstTick, nil
}

// Decide is called on every compare match. It returns the direction to
// step (or NoAction once stopped) and the delay to the next match.
func (l *Linear) Decide() steptimer.Decision {
	dec := steptimer.Decision{Compare: clampCompare(l.delay)}
	next := l.delay

	switch l.phase {
	case Stop:
		l.stepCount = 0
		l.rest = 0
		dec.Outcome = steptimer.NoAction
		dec.Disable = true
		return dec

	case Accel:
		dec.Outcome = l.dir
		l.stepCount++
		l.accelCount++
		next = l.taylor()
		if l.stepCount >= l.decelStart {
			l.accelCount = l.decelVal
			l.phase = Decel
		} else if next <= l.minDelay {
			l.lastAccelDelay = next
			next = l.minDelay
			l.rest = 0
			l.phase = Run
		}

	case Run:
		dec.Outcome = l.dir
		l.stepCount++
		next = l.minDelay
		if l.stepCount >= l.decelStart {
			l.accelCount = l.decelVal
			next = l.lastAccelDelay
			l.phase = Decel
		}

	case Decel:
		dec.Outcome = l.dir
		l.stepCount++
		l.accelCount++
		next = l.taylor()
		if l.accelCount >= 0 {
			l.phase = Stop
		}
	}

	// The approximation can go non-positive on the last step of a very
	// short move; keep the previous interval.
	if next > 0 {
		l.delay = next
	}
	return dec
}

func (l *Linear) taylor() int64 {
	den := 4*l.accelCount + 1
	num := 2*l.delay + l.rest
	l.rest = num % den
	return l.delay - num/den
}

// Phase returns the current ramp phase.
func (l *Linear) Phase() Phase {
	return l.phase
}

// Delay returns the current step delay in ticks.
func (l *Linear) Delay() uint32 {
	return clampCompare(l.delay)
}

func clampCompare(v int64) uint32 {
	switch {
	case v < 1:
		return 1
	case v > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
