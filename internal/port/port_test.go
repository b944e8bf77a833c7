package port_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/rt-stepper/internal/port"
)

func TestAcquire_WrapsFailureAsPrivilegeError(t *testing.T) {
	m := port.NewMemory()
	m.FailAcquire = errors.New("operation not permitted")

	g, err := port.Acquire(m)
	require.Error(t, err)
	assert.Nil(t, g)

	var pe *port.PrivilegeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "memory", pe.Port)
	assert.ErrorIs(t, err, m.FailAcquire)
	assert.Zero(t, m.Releases(), "nothing acquired, nothing to release")
}

type plainFailPort struct{ port.Memory }

func (p *plainFailPort) Acquire() error { return errors.New("boom") }

func TestAcquire_WrapsPlainErrors(t *testing.T) {
	_, err := port.Acquire(&plainFailPort{})

	var pe *port.PrivilegeError
	require.ErrorAs(t, err, &pe)
	assert.EqualError(t, err, "port: cannot acquire memory: boom")
}

func TestGuard_ReleasesExactlyOnce(t *testing.T) {
	m := port.NewMemory()
	g, err := port.Acquire(m)
	require.NoError(t, err)
	require.True(t, m.Held())

	require.NoError(t, g.WriteByte(port.High))
	require.NoError(t, g.WriteByte(port.Low))

	require.NoError(t, g.Release())
	require.NoError(t, g.Release())
	require.NoError(t, g.Release())

	assert.Equal(t, 1, m.Acquires())
	assert.Equal(t, 1, m.Releases())
	assert.False(t, m.Held())
	assert.Equal(t, []byte{port.High, port.Low}, m.Writes())
}

func TestMemory_WriteRequiresAcquire(t *testing.T) {
	m := port.NewMemory()
	assert.ErrorIs(t, m.WriteByte(port.High), port.ErrNotAcquired)

	require.NoError(t, m.Acquire())
	require.NoError(t, m.WriteByte(port.High))
	assert.Equal(t, port.High, m.Level())

	require.NoError(t, m.Release())
	assert.ErrorIs(t, m.WriteByte(port.Low), port.ErrNotAcquired)
}

func TestParallel_WriteBeforeAcquire(t *testing.T) {
	p := port.NewParallel(port.DefaultBase)
	assert.Equal(t, "parallel@0x378", p.String())
	assert.ErrorIs(t, p.WriteByte(port.High), port.ErrNotAcquired)
}

func TestGPIO_WriteBeforeAcquire(t *testing.T) {
	g := port.NewGPIO(17)
	assert.Equal(t, "gpio17", g.String())
	assert.ErrorIs(t, g.WriteByte(port.High), port.ErrNotAcquired)
	assert.NoError(t, g.Release(), "releasing an unacquired pin is a no-op")
}
