package uart_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/rt-stepper/internal/uart"
)

// pipeLink feeds the driver from a pipe and collects what it writes.
type pipeLink struct {
	in  *io.PipeReader
	src *io.PipeWriter

	mu  sync.Mutex
	out bytes.Buffer
}

func newPipeLink() *pipeLink {
	r, w := io.Pipe()
	return &pipeLink{in: r, src: w}
}

func (l *pipeLink) Read(b []byte) (int, error) { return l.in.Read(b) }

func (l *pipeLink) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Write(b)
}

func (l *pipeLink) Close() error { return l.in.Close() }

func (l *pipeLink) written() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.String()
}

func (l *pipeLink) typeIn(t *testing.T, s string) {
	t.Helper()
	_, err := l.src.Write([]byte(s))
	require.NoError(t, err)
}

func nextLine(t *testing.T, d *uart.Driver) string {
	t.Helper()
	select {
	case line, ok := <-d.Lines():
		require.True(t, ok, "lines closed")
		return line
	case <-time.After(5 * time.Second):
		t.Fatal("no line received")
		return ""
	}
}

func TestDriver_SendsInOrder(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Log: zerolog.Nop()})

	ctx := context.Background()
	require.NoError(t, d.SendString(ctx, "steps="))
	require.NoError(t, d.SendInt(ctx, -1234))
	require.NoError(t, d.SendByte(ctx, '\n'))

	// More than the ring holds: SendString must wait for the writer.
	long := bytes.Repeat([]byte("x"), 5*uart.TxBufferSize)
	n, err := d.Write(long)
	require.NoError(t, err)
	assert.Equal(t, len(long), n)

	require.NoError(t, d.Close())
	assert.Equal(t, "steps=-1234\n"+string(long), link.written())
	assert.Zero(t, d.Pending())
}

func TestDriver_AssemblesLines(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Log: zerolog.Nop()})
	defer d.Close()

	link.typeIn(t, "stop\r\n")
	assert.Equal(t, "stop", nextLine(t, d))

	link.typeIn(t, "st\bx\bop\n")
	assert.Equal(t, "sop", nextLine(t, d))
}

func TestDriver_LongLineKeepsLastSlot(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Log: zerolog.Nop()})
	defer d.Close()

	in := bytes.Repeat([]byte("a"), uart.RxBufferSize+5)
	in[len(in)-1] = 'z'
	link.typeIn(t, string(in)+"\r")

	line := nextLine(t, d)
	require.Len(t, line, uart.RxBufferSize-1)
	assert.Equal(t, byte('z'), line[len(line)-1])
}

func TestDriver_Echo(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Echo: true, Log: zerolog.Nop()})

	link.typeIn(t, "ab\bc\r")
	assert.Equal(t, "ac", nextLine(t, d))

	require.NoError(t, d.Close())
	assert.Equal(t, "ab\b \bc\r\n", link.written())
}

func TestDriver_LinesClosedAtEOF(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Log: zerolog.Nop()})

	link.typeIn(t, "go\n")
	require.NoError(t, link.src.Close())

	var got []string
	for line := range d.Lines() {
		got = append(got, line)
	}
	assert.Equal(t, []string{"go"}, got)
	require.NoError(t, d.Close())
}

func TestDriver_SendAfterClose(t *testing.T) {
	link := newPipeLink()
	d := uart.New(context.Background(), link, uart.Options{Log: zerolog.Nop()})
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	// The ring still has room, so a single byte is accepted but never sent;
	// filling it reports the closed driver.
	var err error
	for i := 0; i <= uart.TxBufferSize && err == nil; i++ {
		err = d.SendByte(context.Background(), 'x')
	}
	assert.ErrorIs(t, err, uart.ErrClosed)
}
