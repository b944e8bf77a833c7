// Package sampler runs a periodic data-acquisition task.
//
// Every period the task emits a Record into a bounded FIFO. The FIFO is a
// lock-free ring: the task is its only producer and the reader its only
// consumer. When the FIFO is full the new record is dropped and counted,
// the task never blocks on its reader.
package sampler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"
	"github.com/rs/zerolog"

	"github.com/randomizedcoder/rt-stepper/internal/cancel"
	"github.com/randomizedcoder/rt-stepper/internal/tick"
)

const (
	// DefaultPeriod is the sampling period.
	DefaultPeriod = time.Millisecond
	// FIFOBytes is the FIFO size in bytes.
	FIFOBytes = 8000
	// FIFOCapacity is the number of records the FIFO holds.
	FIFOCapacity = FIFOBytes / RecordSize

	ringSlots  = 1024
	ringShards = 1
	producerID = 0
)

var ErrClosed = errors.New("sampler: task stopped")

// Config configures a sampling task. Zero fields take defaults.
type Config struct {
	Period time.Duration
	Source tick.Source
	Log    zerolog.Logger
}

// Task is a running sampler.
type Task struct {
	fifo    *ring.ShardedRing
	queued  atomic.Int64
	emitted atomic.Uint64
	dropped atomic.Uint64

	flags   *cancel.Flags
	done    chan struct{}
	err     error
	log     zerolog.Logger
	cleanup sync.Once
}

// Init creates the FIFO and starts the periodic task.
func Init(cfg Config) (*Task, error) {
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Period < 0 {
		return nil, tick.ErrInvalidPeriod
	}
	if cfg.Source == nil {
		cfg.Source = tick.NewMonotonic()
	}

	fifo, err := ring.NewShardedRing(ringSlots, ringShards)
	if err != nil {
		return nil, fmt.Errorf("sampler: create fifo: %w", err)
	}

	t := &Task{
		fifo:  fifo,
		flags: cancel.NewFlags(),
		done:  make(chan struct{}),
		log:   cfg.Log,
	}

	clock := tick.NewClock(cfg.Source)
	if err := clock.Start(cfg.Period); err != nil {
		return nil, err
	}

	go t.run(clock)
	<-t.flags.Started()

	t.log.Debug().Dur("period", cfg.Period).Int("fifo", FIFOCapacity).Msg("sampler started")
	return t, nil
}

func (t *Task) run(clock *tick.Clock) {
	defer close(t.done)
	t.flags.MarkStarted()

	var counter int32
	for {
		// The first sample is taken one period after start.
		if err := clock.Wait(); err != nil {
			t.err = err
			return
		}
		if !t.flags.Running() {
			return
		}
		now := clock.Now()
		t.put(Record{
			Counter: counter,
			Sample:  float32(math.Sin(2 * math.Pi * float64(now.Nanoseconds()) / 1e9)),
		})
		counter++
	}
}

func (t *Task) put(r Record) {
	t.emitted.Add(1)
	if t.queued.Load() >= FIFOCapacity || !t.fifo.Write(producerID, r) {
		t.dropped.Add(1)
		return
	}
	t.queued.Add(1)
}

// TryRead returns the oldest queued record, if any.
func (t *Task) TryRead() (Record, bool) {
	v, ok := t.fifo.TryRead()
	if !ok {
		return Record{}, false
	}
	t.queued.Add(-1)
	r, ok := v.(Record)
	return r, ok
}

// Drain appends every queued record to dst.
func (t *Task) Drain(dst []Record) []Record {
	for {
		r, ok := t.TryRead()
		if !ok {
			return dst
		}
		dst = append(dst, r)
	}
}

// WriteTo drains the FIFO to w in wire format.
func (t *Task) WriteTo(w io.Writer) (int64, error) {
	var (
		n   int64
		buf = make([]byte, 0, RecordSize)
	)
	for {
		r, ok := t.TryRead()
		if !ok {
			return n, nil
		}
		buf, _ = r.AppendBinary(buf[:0])
		m, err := w.Write(buf)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
}

// Len returns the number of queued records.
func (t *Task) Len() int {
	return int(t.queued.Load())
}

// Emitted returns the number of records produced, dropped ones included.
func (t *Task) Emitted() uint64 {
	return t.emitted.Load()
}

// Dropped returns the number of records lost to a full FIFO.
func (t *Task) Dropped() uint64 {
	return t.dropped.Load()
}

// Done is closed once the task has stopped.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cleanup stops the task and waits for it. Queued records stay readable.
// It is safe to call more than once.
func (t *Task) Cleanup() error {
	t.cleanup.Do(func() {
		t.flags.Cancel()
		<-t.done
		t.log.Debug().
			Uint64("emitted", t.emitted.Load()).
			Uint64("dropped", t.dropped.Load()).
			Msg("sampler stopped")
	})
	return t.err
}
