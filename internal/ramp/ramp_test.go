package ramp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/rt-stepper/internal/ramp"
	"github.com/randomizedcoder/rt-stepper/internal/steptimer"
)

type trace struct {
	outcomes []steptimer.Outcome
	compares []uint32
	phases   []ramp.Phase
}

// drain calls Decide until the planner disables the timer.
func drain(t *testing.T, l *ramp.Linear) trace {
	t.Helper()
	var tr trace
	for i := 0; i < 1_000_000; i++ {
		phase := l.Phase()
		d := l.Decide()
		if d.Disable {
			assert.Equal(t, steptimer.NoAction, d.Outcome)
			return tr
		}
		tr.outcomes = append(tr.outcomes, d.Outcome)
		tr.compares = append(tr.compares, d.Compare)
		tr.phases = append(tr.phases, phase)
	}
	t.Fatal("planner never stopped")
	return tr
}

func TestFromTurns(t *testing.T) {
	steps, a, d, s, err := ramp.FromTurns(2.0, 0.5, 0.5, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 400, steps)
	assert.Equal(t, uint32(314), a)
	assert.Equal(t, uint32(314), d)
	assert.Equal(t, uint32(628), s)

	steps, _, _, _, err = ramp.FromTurns(-0.5, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, -100, steps)

	_, _, _, _, err = ramp.FromTurns(1, 0, 1, 1)
	assert.ErrorIs(t, err, ramp.ErrZeroRate)

	_, _, _, _, err = ramp.FromTurns(1, 1, 1, 1000)
	assert.ErrorIs(t, err, ramp.ErrOverflow)
}

func TestLinear_SymmetricMove(t *testing.T) {
	l := ramp.NewLinear()
	first, err := l.Move(400, 314, 314, 628)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), first)
	assert.Equal(t, ramp.Accel, l.Phase())

	tr := drain(t, l)
	require.Len(t, tr.outcomes, 400, "exactly the requested number of steps")
	for _, o := range tr.outcomes {
		assert.Equal(t, steptimer.Forward, o)
	}
	assert.Equal(t, ramp.Stop, l.Phase())

	// Delays shrink while accelerating and grow while decelerating.
	for i := 1; i < len(tr.compares); i++ {
		if tr.phases[i] != tr.phases[i-1] {
			continue
		}
		switch tr.phases[i] {
		case ramp.Accel:
			assert.LessOrEqual(t, tr.compares[i], tr.compares[i-1], "step %d", i)
		case ramp.Decel:
			assert.GreaterOrEqual(t, tr.compares[i], tr.compares[i-1], "step %d", i)
		}
	}
	assert.Less(t, tr.compares[len(tr.compares)/2], tr.compares[0])
}

func TestLinear_ReachesTopSpeed(t *testing.T) {
	l := ramp.NewLinear()
	_, err := l.Move(-2000, 3142, 3142, 628)
	require.NoError(t, err)

	tr := drain(t, l)
	require.Len(t, tr.outcomes, 2000)
	assert.Equal(t, steptimer.Reverse, tr.outcomes[0])

	minDelay := uint32(1447488 / 628)
	sawRun := false
	for i, c := range tr.compares {
		switch tr.phases[i] {
		case ramp.Accel:
			assert.Greater(t, c, minDelay, "step %d", i)
		case ramp.Run:
			sawRun = true
			assert.Equal(t, minDelay, c, "step %d", i)
		}
	}
	assert.True(t, sawRun)
}

func TestLinear_SingleStep(t *testing.T) {
	l := ramp.NewLinear()
	_, err := l.Move(1, 100, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, ramp.Decel, l.Phase())

	d := l.Decide()
	assert.Equal(t, steptimer.Forward, d.Outcome)
	assert.Equal(t, uint32(1000), d.Compare)
	assert.False(t, d.Disable)

	d = l.Decide()
	assert.True(t, d.Disable)
	assert.Equal(t, steptimer.NoAction, d.Outcome)
}

func TestLinear_MoveErrors(t *testing.T) {
	l := ramp.NewLinear()
	_, err := l.Move(0, 1, 1, 1)
	assert.ErrorIs(t, err, ramp.ErrNoMotion)
	_, err = l.Move(10, 1, 0, 1)
	assert.ErrorIs(t, err, ramp.ErrZeroRate)
}

func TestLinear_DrivesEmulator(t *testing.T) {
	l := ramp.NewLinear()
	first, err := l.Move(50, 1000, 1000, 1000)
	require.NoError(t, err)

	e := steptimer.New(l)
	e.Arm(first)

	steps := 0
	for i := 0; i < 50_000_000 && e.State().Running(); i++ {
		if d, ok := e.Tick(); ok && d.Outcome.Steps() {
			steps++
		}
	}
	assert.False(t, e.State().Running(), "timer disabled at the end of the move")
	assert.Equal(t, 50, steps)
}

func TestConstant(t *testing.T) {
	c := ramp.NewConstant(100)
	first, err := c.Move(-5, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), first)

	d := c.Decide()
	assert.Equal(t, steptimer.Reverse, d.Outcome)
	assert.Equal(t, uint32(100), d.Compare)
	assert.False(t, d.Disable)

	_, err = c.Move(0, 0, 0, 0)
	assert.ErrorIs(t, err, ramp.ErrNoMotion)
	_, err = ramp.NewConstant(0).Move(1, 0, 0, 0)
	assert.ErrorIs(t, err, ramp.ErrBadDelay)
}
