package jitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Bucket counts the intervals in [Low, High). The last bucket of a
// histogram also includes its High bound.
type Bucket struct {
	Low   time.Duration
	High  time.Duration
	Count int
}

// Histogram sorts intervals into n equal-width buckets spanning the
// observed range. All-equal input collapses into a single bucket.
func Histogram(intervals []time.Duration, n int) []Bucket {
	if len(intervals) == 0 || n < 1 {
		return nil
	}

	s := Summarize(intervals)
	span := s.Max - s.Min
	if span == 0 {
		return []Bucket{{Low: s.Min, High: s.Max, Count: len(intervals)}}
	}

	width := span / time.Duration(n)
	if width == 0 {
		width = 1
		n = int(span) + 1
	}
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].Low = s.Min + time.Duration(i)*width
		buckets[i].High = buckets[i].Low + width
	}
	buckets[n-1].High = s.Max

	for _, iv := range intervals {
		i := int((iv - s.Min) / width)
		if i >= n {
			i = n - 1
		}
		buckets[i].Count++
	}
	return buckets
}

// RenderHistogram draws the buckets as horizontal bars scaled so the
// fullest bucket is width characters long.
func RenderHistogram(w io.Writer, buckets []Bucket, width int) error {
	if width < 1 {
		width = 60
	}
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	bw := bufio.NewWriter(w)
	for _, b := range buckets {
		n := 0
		if peak > 0 {
			n = b.Count * width / peak
		}
		if n == 0 && b.Count > 0 {
			n = 1
		}
		fmt.Fprintf(bw, "%12v - %-12v %6d |%s\n", b.Low, b.High, b.Count, strings.Repeat("#", n))
	}
	return bw.Flush()
}
