package jitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Options controls the bar plot.
type Options struct {
	// Resolution is the interval length drawn as one bar character.
	// Zero means one millisecond, i.e. bars in whole milliseconds.
	Resolution time.Duration
	// MaxWidth caps the bar length; longer bars end in '>'. Zero means
	// no cap.
	MaxWidth int
	// Bar is the fill character. Zero means '#'.
	Bar byte
}

func (o Options) withDefaults() Options {
	if o.Resolution <= 0 {
		o.Resolution = time.Millisecond
	}
	if o.Bar == 0 {
		o.Bar = '#'
	}
	return o
}

// Render writes one line per interval: its index, its length in
// nanoseconds and a bar proportional to it.
func Render(w io.Writer, intervals []time.Duration, opts Options) error {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)

	for i, iv := range intervals {
		fmt.Fprintf(bw, "%5d %12d ns |%s\n", i+1, iv.Nanoseconds(), bar(iv, opts))
	}
	return bw.Flush()
}

func bar(iv time.Duration, opts Options) string {
	n := int(iv / opts.Resolution)
	if n < 0 {
		n = 0
	}
	if opts.MaxWidth > 0 && n > opts.MaxWidth {
		return strings.Repeat(string(opts.Bar), opts.MaxWidth-1) + ">"
	}
	return strings.Repeat(string(opts.Bar), n)
}

// WriteSummary writes s in a short human readable block.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"intervals: %d\ntotal:     %v\nmin:       %v\nmax:       %v\nmean:      %v\nstddev:    %v\njitter:    %v (peak to peak)\n",
		s.Count, s.Total, s.Min, s.Max, s.Mean, s.StdDev, s.PeakToPeak())
	return err
}
