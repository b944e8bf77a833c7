// Package controller runs the periodic step-generation loop.
//
// Each period the loop:
//
//   - closes the pulse window by one tick, dropping the line when it ends
//   - ticks the step timer
//   - on a Forward or Reverse decision raises the line, opens a new pulse
//     window and records a StepEvent
//   - sleeps to the next absolute deadline
//
// The loop stops when the run log fills or the flags are cancelled. It
// never logs or allocates inside a period.
package controller

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/randomizedcoder/rt-stepper/internal/cancel"
	"github.com/randomizedcoder/rt-stepper/internal/port"
	"github.com/randomizedcoder/rt-stepper/internal/pulse"
	"github.com/randomizedcoder/rt-stepper/internal/recorder"
	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
	"github.com/randomizedcoder/rt-stepper/internal/tick"
)

// DefaultPeriod is the loop period: one tick of a 460.75 kHz timer.
const DefaultPeriod = 2170 * time.Nanosecond

var ErrNilOutput = errors.New("controller: output is nil")

// StopReason says why a run ended.
type StopReason int

const (
	StopNone StopReason = iota
	StopCancelled
	StopCapacity
	StopIdle
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopCancelled:
		return "cancelled"
	case StopCapacity:
		return "capacity"
	case StopIdle:
		return "idle"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Config holds the loop parameters.
type Config struct {
	Period     time.Duration
	PulseWidth uint32
	// StopWhenIdle ends the run once the planner has disabled the timer
	// and the last pulse has closed.
	StopWhenIdle bool
}

// Stats is what the loop counted during a run. Read it after the run.
type Stats struct {
	Ticks   uint64
	Matches uint64
	Steps   uint64
	Reason  StopReason
}

// Loop owns the per-run state of the control thread.
type Loop struct {
	cfg    Config
	clock  *tick.Clock
	timer  *steptimer.Emulator
	shaper pulse.Window
	events *recorder.Log
	out    io.ByteWriter
	log    zerolog.Logger
	stats  Stats
}

// New wires a loop. timer should already be armed by the planner's Move.
func New(cfg Config, clock *tick.Clock, timer *steptimer.Emulator, events *recorder.Log, out io.ByteWriter, log zerolog.Logger) (*Loop, error) {
	if cfg.Period <= 0 {
		return nil, tick.ErrInvalidPeriod
	}
	if out == nil {
		return nil, ErrNilOutput
	}
	if cfg.PulseWidth == 0 {
		cfg.PulseWidth = pulse.DefaultWidth
	}
	return &Loop{
		cfg:    cfg,
		clock:  clock,
		timer:  timer,
		events: events,
		out:    out,
		log:    log,
	}, nil
}

// Run is the control thread body. It returns when the log is full (after
// cancelling flags itself) or when flags is cancelled by someone else. A
// non-nil error means the output or the clock failed mid-run.
func (l *Loop) Run(flags *cancel.Flags) error {
	if err := l.clock.Start(l.cfg.Period); err != nil {
		return err
	}
	l.log.Debug().
		Dur("period", l.cfg.Period).
		Int("capacity", l.events.Cap()).
		Msg("control loop start")

	err := l.loop(flags)

	// Leave the line low however the run ended.
	if l.shaper.Active() {
		if werr := l.out.WriteByte(port.Low); werr != nil && err == nil {
			err = werr
		}
	}

	l.log.Debug().
		Uint64("ticks", l.stats.Ticks).
		Uint64("steps", l.stats.Steps).
		Stringer("reason", l.stats.Reason).
		Msg("control loop stop")
	return err
}

func (l *Loop) loop(flags *cancel.Flags) error {
	for flags.Running() {
		if err := l.Tick(); err != nil {
			return err
		}
		if l.events.Full() {
			l.stats.Reason = StopCapacity
			flags.Cancel()
			return nil
		}
		if l.cfg.StopWhenIdle && !l.timer.State().Running() && !l.shaper.Active() {
			l.stats.Reason = StopIdle
			flags.Cancel()
			return nil
		}
		if err := l.clock.Wait(); err != nil {
			return fmt.Errorf("controller: sleep: %w", err)
		}
	}
	l.stats.Reason = StopCancelled
	return nil
}

// Tick does the work of one period without sleeping.
func (l *Loop) Tick() error {
	l.stats.Ticks++

	// The pulse window runs down even while the timer is disabled.
	if l.shaper.Tick() {
		if err := l.out.WriteByte(port.Low); err != nil {
			return fmt.Errorf("controller: deassert: %w", err)
		}
	}

	matched := l.timer.State().Compare
	d, ok := l.timer.Tick()
	if !ok {
		return nil
	}
	l.stats.Matches++

	if !d.Outcome.Steps() {
		return nil
	}

	if err := l.out.WriteByte(port.High); err != nil {
		return fmt.Errorf("controller: assert: %w", err)
	}
	l.shaper.Trigger(l.cfg.PulseWidth)
	l.stats.Steps++

	return l.events.Append(recorder.StepEvent{
		Time:    l.clock.Now(),
		Compare: matched,
		Outcome: d.Outcome,
	})
}

// Stats returns the run counters.
func (l *Loop) Stats() Stats {
	return l.stats
}

// PulseActive reports whether the step line is currently high.
func (l *Loop) PulseActive() bool {
	return l.shaper.Active()
}
