// Package uart is a buffered byte driver for a serial console.
//
// Outgoing bytes go through a fixed TX ring buffer that a writer goroutine
// drains to the link; SendByte blocks while the buffer is full. Incoming
// bytes are assembled into command lines with echo and backspace editing,
// and each line ending in CR or LF is delivered on Lines.
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/rt-stepper/internal/queue"
)

const (
	// TxBufferSize is the TX ring size in bytes.
	TxBufferSize = 64
	// RxBufferSize bounds an input line, terminator included.
	RxBufferSize = 32
	// DefaultBaud is the console speed.
	DefaultBaud = 115200

	lineQueue = 8
)

var ErrClosed = errors.New("uart: driver closed")

// Open opens a serial device with tarm/serial.
//
// Reads on the returned link block until data arrives or the link is
// closed.
func Open(device string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("uart: open %s: %w", device, err)
	}
	return serialLink{p}, nil
}

// serialLink hides read timeouts, which tarm/serial reports as io.EOF.
type serialLink struct {
	*serial.Port
}

func (l serialLink) Read(b []byte) (int, error) {
	for {
		n, err := l.Port.Read(b)
		if n == 0 && errors.Is(err, io.EOF) {
			continue
		}
		return n, err
	}
}

// Options tunes a Driver.
type Options struct {
	// Echo sends received characters back, as a terminal expects.
	Echo bool
	Log  zerolog.Logger
}

// Driver owns a link and the goroutines that service it.
type Driver struct {
	link io.ReadWriter
	opts Options

	txMu    sync.Mutex // serializes producers of the SPSC ring
	tx      *queue.RingBuffer[byte]
	txReady chan struct{}
	txSpace chan struct{}

	rx    []byte
	lines chan string

	cancel context.CancelFunc
	done   chan struct{}
	g      *errgroup.Group
	once   sync.Once
	err    error
}

// New starts servicing link. Call Close to stop.
func New(ctx context.Context, link io.ReadWriter, opts Options) *Driver {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	d := &Driver{
		link:    link,
		opts:    opts,
		tx:      queue.NewRingBuffer[byte](TxBufferSize),
		txReady: make(chan struct{}, 1),
		txSpace: make(chan struct{}, 1),
		rx:      make([]byte, 0, RxBufferSize),
		lines:   make(chan string, lineQueue),
		cancel:  cancel,
		done:    make(chan struct{}),
		g:       g,
	}

	g.Go(func() error { return d.writer(ctx) })
	g.Go(func() error {
		defer close(d.lines)
		return d.reader(ctx)
	})
	return d
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// SendByte queues b, waiting for room while the TX buffer is full.
func (d *Driver) SendByte(ctx context.Context, b byte) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	return d.push(ctx, b)
}

func (d *Driver) push(ctx context.Context, b byte) error {
	for !d.tx.Push(b) {
		select {
		case <-d.txSpace:
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
			return ErrClosed
		}
	}
	notify(d.txReady)
	return nil
}

// SendString queues every byte of s in order.
func (d *Driver) SendString(ctx context.Context, s string) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	for i := 0; i < len(s); i++ {
		if err := d.push(ctx, s[i]); err != nil {
			return err
		}
	}
	return nil
}

// SendInt queues the decimal form of x.
func (d *Driver) SendInt(ctx context.Context, x int) error {
	return d.SendString(ctx, strconv.Itoa(x))
}

// Write implements io.Writer on top of SendString.
func (d *Driver) Write(p []byte) (int, error) {
	if err := d.SendString(context.Background(), string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Pending returns the number of bytes waiting in the TX buffer.
func (d *Driver) Pending() int {
	return d.tx.Len()
}

// Lines delivers received command lines without their terminator. It is
// closed when the link reaches EOF or the driver is closed.
func (d *Driver) Lines() <-chan string {
	return d.lines
}

func (d *Driver) writer(ctx context.Context) error {
	buf := make([]byte, TxBufferSize)
	for {
		if n := d.tx.PopInto(buf); n > 0 {
			notify(d.txSpace)
			if _, err := d.link.Write(buf[:n]); err != nil {
				return fmt.Errorf("uart: write: %w", err)
			}
			continue
		}
		select {
		case <-d.txReady:
		case <-ctx.Done():
			return nil
		}
	}
}

func (d *Driver) reader(ctx context.Context) error {
	buf := make([]byte, RxBufferSize)
	for {
		n, err := d.link.Read(buf)
		for _, b := range buf[:n] {
			if d.receive(ctx, b) != nil {
				return nil
			}
		}
		if ctx.Err() != nil || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("uart: read: %w", err)
		}
	}
}

// receive applies one input byte to the line editor.
func (d *Driver) receive(ctx context.Context, b byte) error {
	switch b {
	case '\b', 0x7f:
		if len(d.rx) > 0 {
			d.rx = d.rx[:len(d.rx)-1]
			return d.echo(ctx, "\b \b")
		}
		return nil

	case '\r', '\n':
		if len(d.rx) == 0 {
			return nil
		}
		line := string(d.rx)
		d.rx = d.rx[:0]
		if err := d.echo(ctx, "\r\n"); err != nil {
			return err
		}
		select {
		case d.lines <- line:
		default:
			d.opts.Log.Warn().Str("line", line).Msg("uart: line dropped, reader not keeping up")
		}
		return nil
	}

	// A full line keeps taking input in its last slot.
	if len(d.rx) < RxBufferSize-1 {
		d.rx = append(d.rx, b)
		return d.echo(ctx, string(b))
	}
	d.rx[len(d.rx)-1] = b
	return d.echo(ctx, "\b"+string(b))
}

func (d *Driver) echo(ctx context.Context, s string) error {
	if !d.opts.Echo {
		return nil
	}
	return d.SendString(ctx, s)
}

// Close stops both goroutines, closing the link if it is an io.Closer, and
// returns the first error either of them hit. Bytes still buffered when
// Close is called are written first.
func (d *Driver) Close() error {
	d.once.Do(func() {
		d.flush()
		close(d.done)
		d.cancel()
		var cerr error
		if c, ok := d.link.(io.Closer); ok {
			cerr = c.Close()
		}
		d.err = multierr.Append(d.g.Wait(), cerr)
	})
	return d.err
}

// flush waits briefly for the writer to empty the TX buffer.
func (d *Driver) flush() {
	deadline := time.Now().Add(time.Second)
	for d.tx.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}
