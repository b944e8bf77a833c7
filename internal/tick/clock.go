package tick

import "time"

// Clock tracks the next absolute wake deadline of a periodic loop.
//
// Typical use:
//
//	c := tick.NewClock(tick.NewMonotonic())
//	_ = c.Start(period)
//	for running {
//		work()
//		_ = c.Wait()
//	}
//
// A Clock is owned by one goroutine; it is not safe for concurrent use.
type Clock struct {
	src  Source
	info PeriodInfo
}

// NewClock creates a Clock reading time from src.
func NewClock(src Source) *Clock {
	return &Clock{src: src}
}

// Start captures the current time as the first deadline and fixes the
// period for the rest of the run.
func (c *Clock) Start(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	c.info = PeriodInfo{
		Next:   c.src.Now(),
		Period: period,
	}
	return nil
}

// Advance moves the deadline forward by exactly one period.
func (c *Clock) Advance() {
	c.info.Next = c.info.Next.Add(c.info.Period)
}

// SleepUntilDeadline blocks until the current deadline.
//
// If the work of the period overran the deadline this returns at once;
// the overrun is neither detected nor compensated.
func (c *Clock) SleepUntilDeadline() error {
	return c.src.SleepUntil(c.info.Next)
}

// Wait advances the deadline and sleeps until it. This is the end-of-period
// call of the loop.
func (c *Clock) Wait() error {
	c.Advance()
	return c.SleepUntilDeadline()
}

// Now returns the current time from the clock's source.
func (c *Clock) Now() Timespec {
	return c.src.Now()
}

// Info returns the current schedule.
func (c *Clock) Info() PeriodInfo {
	return c.info
}
