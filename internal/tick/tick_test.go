package tick_test

import (
	"testing"
	"time"

	"github.com/randomizedcoder/rt-stepper/internal/tick"
)

func TestTimespec_Add_CarriesOnce(t *testing.T) {
	periods := []time.Duration{1, 2170, 999_999_999, time.Second}
	remainders := []int64{0, 1, 500_000_000, 999_999_999}

	for _, p := range periods {
		for _, r := range remainders {
			start := tick.Timespec{Sec: 10, Nsec: r}
			got := start.Add(p)

			if got.Nsec < 0 || got.Nsec >= int64(time.Second) {
				t.Errorf("Add(%d) from nsec=%d: nsec %d out of [0, 1e9)", p, r, got.Nsec)
			}
			if carries := got.Sec - start.Sec; carries > 1 {
				t.Errorf("Add(%d) from nsec=%d: expected at most one carry, got %d", p, r, carries)
			}
			if got.Sub(start) != p {
				t.Errorf("Add(%d) from nsec=%d: expected delta %d, got %d", p, r, p, got.Sub(start))
			}
		}
	}
}

func TestTimespec_Add_LongPeriod(t *testing.T) {
	got := tick.Timespec{Sec: 0, Nsec: 900_000_000}.Add(2500 * time.Millisecond)
	want := tick.Timespec{Sec: 3, Nsec: 400_000_000}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestTimespec_Before(t *testing.T) {
	a := tick.Timespec{Sec: 1, Nsec: 999_999_999}
	b := tick.Timespec{Sec: 2, Nsec: 0}

	if !a.Before(b) {
		t.Error("expected a.Before(b) = true")
	}
	if b.Before(a) {
		t.Error("expected b.Before(a) = false")
	}
	if a.Before(a) {
		t.Error("expected a.Before(a) = false")
	}
}

func TestFromNanoseconds(t *testing.T) {
	ts := tick.FromNanoseconds(3_000_000_123)
	if ts.Sec != 3 || ts.Nsec != 123 {
		t.Errorf("expected {3 123}, got %+v", ts)
	}
	if ts.Nanoseconds() != 3_000_000_123 {
		t.Errorf("expected round trip, got %d", ts.Nanoseconds())
	}
}

func TestClock_Start_RejectsNonPositivePeriod(t *testing.T) {
	c := tick.NewClock(tick.NewManual(tick.Timespec{}))

	for _, p := range []time.Duration{0, -time.Millisecond} {
		if err := c.Start(p); err != tick.ErrInvalidPeriod {
			t.Errorf("Start(%v): expected ErrInvalidPeriod, got %v", p, err)
		}
	}
}

func TestClock_DeadlineIsMonotonic(t *testing.T) {
	src := tick.NewManual(tick.Timespec{Sec: 5, Nsec: 999_999_000})
	c := tick.NewClock(src)
	if err := c.Start(2170 * time.Nanosecond); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	prev := c.Info().Next
	for i := 0; i < 1000; i++ {
		if err := c.Wait(); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		next := c.Info().Next
		if next.Before(prev) {
			t.Fatalf("deadline went backwards: %+v -> %+v", prev, next)
		}
		prev = next
	}
}

// Work done inside a period must not push later deadlines out.
func TestClock_NoCumulativeDrift_Simulated(t *testing.T) {
	const period = time.Millisecond
	const n = 500

	start := tick.Timespec{Sec: 100}
	src := tick.NewManual(start)
	c := tick.NewClock(src)
	if err := c.Start(period); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < n; i++ {
		// Varying work, always shorter than the period.
		src.Spend(time.Duration(i%7) * 100 * time.Microsecond)
		if err := c.Wait(); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	if got := src.Now().Sub(start); got != n*period {
		t.Errorf("expected elapsed %v, got %v", n*period, got)
	}
}

// An overrun delays only the period it happens in.
func TestClock_OverrunDelaysSinglePeriod(t *testing.T) {
	const period = time.Millisecond

	start := tick.Timespec{}
	src := tick.NewManual(start)
	c := tick.NewClock(src)
	_ = c.Start(period)

	src.Spend(3*period + period/2)
	_ = c.Wait()
	if got := src.Now().Sub(start); got != 3*period+period/2 {
		t.Errorf("expected overrun to return immediately at %v, got %v", 3*period+period/2, got)
	}

	// The schedule is still anchored at start; the next few deadlines are
	// already past and return at once until it catches up.
	for i := 0; i < 3; i++ {
		_ = c.Wait()
	}
	if got := c.Info().Next.Sub(start); got != 4*period {
		t.Errorf("expected deadline at %v, got %v", 4*period, got)
	}
	if got := src.Now().Sub(start); got != 4*period {
		t.Errorf("expected clock back on schedule at %v, got %v", 4*period, got)
	}
}

func TestClock_NoCumulativeDrift_Real(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time test")
	}

	const period = 2 * time.Millisecond
	const n = 100
	// Generous bound: a shared CI scheduler wakes late, but a late wake
	// must not carry into the next period.
	const slack = 15 * time.Millisecond

	src := tick.NewMonotonic()
	c := tick.NewClock(src)
	if err := c.Start(period); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	begin := c.Info().Next

	for i := 0; i < n; i++ {
		time.Sleep(period / 4)
		if err := c.Wait(); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	elapsed := src.Now().Sub(begin)
	if elapsed < n*period {
		t.Errorf("woke early: expected >= %v, got %v", n*period, elapsed)
	}
	if elapsed > n*period+slack {
		t.Errorf("drift: expected <= %v, got %v", n*period+slack, elapsed)
	}
}

func TestManual_SleepNeverGoesBackwards(t *testing.T) {
	src := tick.NewManual(tick.Timespec{Sec: 10})

	_ = src.SleepUntil(tick.Timespec{Sec: 9})
	if got := src.Now(); got != (tick.Timespec{Sec: 10}) {
		t.Errorf("expected time to stay at 10s, got %+v", got)
	}
	if src.Sleeps() != 1 {
		t.Errorf("expected Sleeps() = 1, got %d", src.Sleeps())
	}
}

func TestManual_OnSleep(t *testing.T) {
	src := tick.NewManual(tick.Timespec{})
	var seen []tick.Timespec
	src.OnSleep = func(now tick.Timespec) { seen = append(seen, now) }

	_ = src.SleepUntil(tick.Timespec{Nsec: 5})
	_ = src.SleepUntil(tick.Timespec{Nsec: 10})

	if len(seen) != 2 || seen[1].Nsec != 10 {
		t.Errorf("expected hook to see both sleeps, got %+v", seen)
	}
}
