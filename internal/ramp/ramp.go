// Package ramp plans step timing for the step timer.
//
// A Planner is the step timer's Decider. Move loads a new motion and
// returns the compare value to arm the timer with; every compare match
// then asks the planner for the step direction and the delay until the
// next match.
//
// Implementations:
//   - Constant: fixed delay, fixed direction, forever
//   - Linear: accelerate, run at top speed, decelerate, stop
package ramp

import (
	"errors"
	"math"

	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
)

const (
	// TimerFreq is the step timer frequency in Hz. One loop period is one
	// timer tick (1/TimerFreq = 2.17us).
	TimerFreq = 460750
	// StepsPerRev is full steps per motor revolution.
	StepsPerRev = 200
)

var (
	ErrZeroRate = errors.New("ramp: acceleration, deceleration and speed must be positive")
	ErrTooFar   = errors.New("ramp: move does not fit in a step count")
	ErrNoMotion = errors.New("ramp: zero-length move")
	ErrBadDelay = errors.New("ramp: compare delay must be positive")
	ErrOverflow = errors.New("ramp: rate exceeds 16-bit timer range")
)

// Planner is a steptimer.Decider that can be given a move.
type Planner interface {
	steptimer.Decider
	// Move loads a relative move of steps (negative is reverse) with
	// accel and decel in 0.01 rad/s^2 and speed in 0.01 rad/s. It returns
	// the compare value to arm the timer with.
	Move(steps int, accel, decel, speed uint32) (uint32, error)
}

// FromTurns converts turns, turns/s^2 and turns/s into the step and
// 0.01 rad units Move takes.
func FromTurns(turn, accel, decel, speed float64) (steps int, a, d, s uint32, err error) {
	if accel <= 0 || decel <= 0 || speed <= 0 {
		return 0, 0, 0, 0, ErrZeroRate
	}
	st := math.Round(turn * StepsPerRev)
	if math.Abs(st) > math.MaxInt32 {
		return 0, 0, 0, 0, ErrTooFar
	}
	if a, err = centiRad(accel); err != nil {
		return 0, 0, 0, 0, err
	}
	if d, err = centiRad(decel); err != nil {
		return 0, 0, 0, 0, err
	}
	if s, err = centiRad(speed); err != nil {
		return 0, 0, 0, 0, err
	}
	return int(st), a, d, s, nil
}

func centiRad(turns float64) (uint32, error) {
	v := math.Round(turns * 2 * math.Pi * 100)
	if v > math.MaxUint16 {
		return 0, ErrOverflow
	}
	if v < 1 {
		v = 1
	}
	return uint32(v), nil
}

// Constant steps in one direction every Delay ticks.
type Constant struct {
	Delay     uint32
	Direction steptimer.Outcome
}

var _ Planner = (*Constant)(nil)

// NewConstant returns a forward planner with the given delay.
func NewConstant(delay uint32) *Constant {
	return &Constant{Delay: delay, Direction: steptimer.Forward}
}

// Move sets the direction from the sign of steps. The rates are ignored.
func (c *Constant) Move(steps int, _, _, _ uint32) (uint32, error) {
	if c.Delay == 0 {
		return 0, ErrBadDelay
	}
	switch {
	case steps > 0:
		c.Direction = steptimer.Forward
	case steps < 0:
		c.Direction = steptimer.Reverse
	default:
		return 0, ErrNoMotion
	}
	return c.Delay, nil
}

func (c *Constant) Decide() steptimer.Decision {
	return steptimer.Decision{Outcome: c.Direction, Compare: c.Delay}
}
