// Package app runs one stepper move end to end.
//
// A run acquires the output port, locks memory, plans the move, starts the
// control thread and waits for it. The port is released exactly once on
// every path out of Run, including the ones where no thread was created.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/rt-stepper/internal/cancel"
	"github.com/randomizedcoder/rt-stepper/internal/config"
	"github.com/randomizedcoder/rt-stepper/internal/controller"
	"github.com/randomizedcoder/rt-stepper/internal/jitter"
	"github.com/randomizedcoder/rt-stepper/internal/port"
	"github.com/randomizedcoder/rt-stepper/internal/ramp"
	"github.com/randomizedcoder/rt-stepper/internal/recorder"
	"github.com/randomizedcoder/rt-stepper/internal/rt"
	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
	"github.com/randomizedcoder/rt-stepper/internal/tick"
)

// StopCommand is the console line that cancels a run.
const StopCommand = "stop"

// Exit statuses.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitResource = 2
)

var ErrNoPort = errors.New("app: no output port")

// Deps are the platform pieces a Runner drives. Zero fields get the
// platform defaults, except Port which is required.
type Deps struct {
	Port   port.Port
	Sched  rt.Scheduler
	Memory rt.MemoryLocker
	Source tick.Source
	// Commands, if set, is read for console lines while the thread runs.
	Commands <-chan string
	Log      zerolog.Logger
}

// Result is what a run leaves behind for diagnostics.
type Result struct {
	Events    []recorder.StepEvent
	Intervals []time.Duration
	Stats     controller.Stats
}

// Runner performs a single run with fixed options.
type Runner struct {
	opts  config.Options
	deps  Deps
	flags *cancel.Flags
}

// New checks opts and fills in default dependencies.
func New(opts config.Options, deps Deps) (*Runner, error) {
	if deps.Port == nil {
		return nil, ErrNoPort
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if deps.Sched == nil {
		deps.Sched = rt.NewScheduler()
	}
	if deps.Memory == nil {
		deps.Memory = rt.NewMemoryLocker()
	}
	if deps.Source == nil {
		deps.Source = tick.NewMonotonic()
	}
	return &Runner{opts: opts, deps: deps, flags: cancel.NewFlags()}, nil
}

// Cancel asks a run in progress to stop at its next period.
func (r *Runner) Cancel() {
	r.flags.Cancel()
}

// Cancelled reports whether a stop has been requested.
func (r *Runner) Cancelled() bool {
	return r.flags.Done()
}

// Run performs the move. Cancelling ctx cancels the run cooperatively.
//
// A *port.PrivilegeError means nothing else was attempted. A
// *rt.ResourceError or *rt.ConfigError means the control thread never ran
// its loop. A *rt.JoinError comes with a Result that is still worth
// reporting.
func (r *Runner) Run(ctx context.Context) (res Result, err error) {
	log := r.deps.Log

	guard, err := port.Acquire(r.deps.Port)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("port", guard.String()).Msg("output acquired")
	defer func() {
		err = multierr.Append(err, guard.Release())
	}()

	if err := rt.LockMemory(r.deps.Memory); err != nil {
		return Result{}, err
	}
	defer func() {
		err = multierr.Append(err, r.deps.Memory.Unlock())
	}()

	events, err := recorder.New(r.opts.Capacity)
	if err != nil {
		return Result{}, err
	}

	planner, compare, err := r.plan()
	if err != nil {
		return Result{}, err
	}
	timer := steptimer.New(planner)
	timer.Arm(compare)

	loop, err := controller.New(controller.Config{
		Period:       r.opts.Period,
		PulseWidth:   uint32(r.opts.PulseWidth),
		StopWhenIdle: r.opts.Planner == config.PlannerLinear,
	}, tick.NewClock(r.deps.Source), timer, events, guard, log)
	if err != nil {
		return Result{}, err
	}

	attr, err := r.opts.Attr()
	if err != nil {
		return Result{}, err
	}
	th := rt.NewThread(r.deps.Sched, r.flags, log)
	if err := th.Configure(attr); err != nil {
		return Result{}, err
	}
	if err := th.Start(loop.Run); err != nil {
		return Result{}, err
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		select {
		case <-ctx.Done():
			log.Info().Msg("run cancelled")
			th.Cancel()
		case <-th.Done():
		}
		return nil
	})
	if r.deps.Commands != nil {
		g.Go(func() error {
			return r.watchCommands(th)
		})
	}

	joinErr := th.Join()
	_ = g.Wait()

	// Join has returned, so the log is ours.
	res = Result{
		Events:    events.Events(),
		Intervals: jitter.Intervals(events.Events()),
		Stats:     loop.Stats(),
	}
	log.Info().
		Int("events", len(res.Events)).
		Uint64("ticks", res.Stats.Ticks).
		Stringer("reason", res.Stats.Reason).
		Msg("run complete")
	return res, joinErr
}

func (r *Runner) watchCommands(th *rt.Thread) error {
	for {
		select {
		case line, ok := <-r.deps.Commands:
			if !ok {
				return nil
			}
			if strings.EqualFold(strings.TrimSpace(line), StopCommand) {
				r.deps.Log.Info().Msg("stop command")
				th.Cancel()
			}
		case <-th.Done():
			return nil
		}
	}
}

// plan builds the planner named in the options and loads the move.
func (r *Runner) plan() (ramp.Planner, uint32, error) {
	o := r.opts
	switch o.Planner {
	case config.PlannerLinear:
		steps, a, d, s, err := ramp.FromTurns(o.Turn, o.Accel, o.Decel, o.Speed)
		if err != nil {
			return nil, 0, err
		}
		l := ramp.NewLinear()
		first, err := l.Move(steps, a, d, s)
		if err != nil {
			return nil, 0, err
		}
		r.deps.Log.Info().
			Int("steps", steps).
			Uint32("accel", a).
			Uint32("decel", d).
			Uint32("speed", s).
			Msg("linear move planned")
		return l, first, nil
	case config.PlannerConstant:
		dir := 1
		if o.Turn < 0 {
			dir = -1
		}
		c := ramp.NewConstant(uint32(o.Compare))
		first, err := c.Move(dir, 0, 0, 0)
		if err != nil {
			return nil, 0, err
		}
		return c, first, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown planner %q", config.ErrInvalid, o.Planner)
	}
}

// ExitCode maps a Run error to the process exit status. A missing
// privilege is not a failure of the program.
func ExitCode(err error) int {
	var (
		pe *port.PrivilegeError
		re *rt.ResourceError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &pe):
		return ExitOK
	case errors.As(err, &re):
		return ExitResource
	default:
		return ExitFailure
	}
}
