// Package jitter analyses a completed run log.
//
// Everything here is a pure function of the recorded timestamps: the
// intervals between consecutive step events, a per-interval bar plot (the
// speed profile of the run, with jitter showing up as ragged bar ends), a
// magnitude histogram and summary statistics.
package jitter

import (
	"math"
	"time"

	"github.com/randomizedcoder/rt-stepper/internal/recorder"
)

// Intervals returns t[i+1]-t[i] for every adjacent pair of events. The
// first event only serves as the base reference. Fewer than two events
// yield no intervals.
func Intervals(events []recorder.StepEvent) []time.Duration {
	if len(events) < 2 {
		return nil
	}
	out := make([]time.Duration, len(events)-1)
	for i := range out {
		out[i] = events[i+1].Time.Sub(events[i].Time)
	}
	return out
}

// Summary holds basic statistics over a set of intervals.
type Summary struct {
	Count  int
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// PeakToPeak is the spread between the longest and shortest interval.
func (s Summary) PeakToPeak() time.Duration {
	return s.Max - s.Min
}

// Summarize computes a Summary. The zero Summary is returned for no input.
func Summarize(intervals []time.Duration) Summary {
	if len(intervals) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(intervals),
		Min:   intervals[0],
		Max:   intervals[0],
	}
	for _, iv := range intervals {
		s.Total += iv
		s.Min = min(s.Min, iv)
		s.Max = max(s.Max, iv)
	}
	mean := float64(s.Total) / float64(s.Count)
	s.Mean = time.Duration(math.Round(mean))

	var sq float64
	for _, iv := range intervals {
		d := float64(iv) - mean
		sq += d * d
	}
	s.StdDev = time.Duration(math.Round(math.Sqrt(sq / float64(s.Count))))
	return s
}
