// Command rtsampler runs the periodic sampler and prints what it emits.
//
// Every period the sampler produces a counter and a 1 Hz sine of the
// monotonic clock into a 1000-record FIFO. This command drains the FIFO
// and prints each record, or writes the 8-byte wire records to stdout
// with -binary.
//
// Usage:
//
//	go run ./cmd/rtsampler -period 1ms -d 5s
//	go run ./cmd/rtsampler -binary > samples.bin
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/rt-stepper/internal/logging"
	"github.com/randomizedcoder/rt-stepper/internal/sampler"
)

func main() {
	period := flag.Duration("period", sampler.DefaultPeriod, "sampling period")
	duration := flag.Duration("d", 0, "stop after this long (0 runs until interrupted)")
	poll := flag.Duration("poll", 100*time.Millisecond, "FIFO drain interval")
	binary := flag.Bool("binary", false, "write wire records to stdout")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := logging.New(os.Stderr, lvl, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	task, err := sampler.Init(sampler.Config{Period: *period, Log: log})
	if err != nil {
		log.Error().Err(err).Msg("sampler init")
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	drain := func() error {
		if *binary {
			_, err := task.WriteTo(out)
			return err
		}
		for {
			r, ok := task.TryRead()
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%10d %+.6f\n", r.Counter, r.Sample)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-task.Done():
		}
		return task.Cleanup()
	})
	g.Go(func() error {
		t := time.NewTicker(*poll)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := drain(); err != nil {
					return err
				}
				if err := out.Flush(); err != nil {
					return err
				}
			case <-task.Done():
				// Cleanup has run; pick up what is left.
				if err := drain(); err != nil {
					return err
				}
				return out.Flush()
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("sampler")
		os.Exit(1)
	}
	log.Info().
		Uint64("emitted", task.Emitted()).
		Uint64("dropped", task.Dropped()).
		Msg("sampler done")
}
