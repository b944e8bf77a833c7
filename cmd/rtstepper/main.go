// Command rtstepper drives a stepper motor from a real-time control thread
// and reports the step timing jitter afterwards.
//
// The control thread ticks an emulated compare-match timer every period
// (2.17us by default) and raises the step line on every step the planner
// asks for. The run ends when the step log is full, the move is done, or
// on SIGINT/SIGTERM or a "stop" line on the serial console.
//
// Usage:
//
//	sudo rtstepper --output parallel
//	sudo rtstepper --planner linear --turn 2 --accel 0.5 --decel 0.5 --speed 1
//	rtstepper --output memory --policy other --priority 0
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/randomizedcoder/rt-stepper/internal/app"
	"github.com/randomizedcoder/rt-stepper/internal/config"
	"github.com/randomizedcoder/rt-stepper/internal/jitter"
	"github.com/randomizedcoder/rt-stepper/internal/logging"
	"github.com/randomizedcoder/rt-stepper/internal/port"
	"github.com/randomizedcoder/rt-stepper/internal/rt"
	"github.com/randomizedcoder/rt-stepper/internal/uart"
)

const histogramBuckets = 10

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, act, err := config.Parse(args, os.Stdout)
	if act == config.Abort {
		return app.ExitOK
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return app.ExitFailure
	}

	log := logging.New(os.Stderr, opts.Level(), true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		report io.Writer = os.Stdout
		cmds   <-chan string
	)
	if opts.Serial != "" {
		link, err := uart.Open(opts.Serial, opts.Baud)
		if err != nil {
			log.Error().Err(err).Msg("serial console")
			return app.ExitFailure
		}
		console := uart.New(ctx, link, uart.Options{Echo: true, Log: log})
		defer func() {
			if err := console.Close(); err != nil {
				log.Warn().Err(err).Msg("serial console close")
			}
		}()
		report = io.MultiWriter(os.Stdout, console)
		cmds = console.Lines()
	}

	runner, err := app.New(opts, app.Deps{
		Port:     newPort(opts),
		Commands: cmds,
		Log:      log,
	})
	if err != nil {
		log.Error().Err(err).Msg("setup")
		return app.ExitFailure
	}

	res, err := runner.Run(ctx)
	code := app.ExitCode(err)

	var (
		pe *port.PrivilegeError
		je *rt.JoinError
	)
	switch {
	case err == nil:
	case errors.As(err, &je):
		// The log up to the failure is still reported.
	case errors.As(err, &pe):
		log.Warn().Err(err).Msg("output not available, run skipped")
		return code
	default:
		log.Error().Err(err).Msg("run failed")
		return code
	}

	if rerr := writeReport(report, res, opts); rerr != nil {
		log.Warn().Err(rerr).Msg("report")
	}
	if je != nil {
		log.Error().Err(err).Msg("control thread")
	}
	return code
}

func newPort(o config.Options) port.Port {
	switch o.Output {
	case config.OutputGPIO:
		return port.NewGPIO(o.GPIOPin)
	case config.OutputMemory:
		return port.NewMemory()
	default:
		return port.NewParallel(port.DefaultBase)
	}
}

func writeReport(w io.Writer, res app.Result, o config.Options) error {
	fmt.Fprintf(w, "\n%d steps, %d ticks, stopped: %v\n\n",
		len(res.Events), res.Stats.Ticks, res.Stats.Reason)

	if err := jitter.Render(w, res.Intervals, jitter.Options{Resolution: o.Resolution}); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := jitter.RenderHistogram(w, jitter.Histogram(res.Intervals, histogramBuckets), 0); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return jitter.WriteSummary(w, jitter.Summarize(res.Intervals))
}
