package domain

import (
	"iter"
	"time"
)

// RollingSums yields (d, sum) for every date d of s that ends a complete
// trailing window of period consecutive days. Windows that run off the start
// of the series, span a gap in the date axis, or contain a missing sample are
// skipped. Each sum is computed from its own window in float32.
func RollingSums(s RainfallSeries, period int) iter.Seq2[time.Time, float32] {
	return func(yield func(time.Time, float32) bool) {
		if period <= 0 {
			return
		}
		// run counts consecutive valid samples ending at i.
		run := 0
		for i := range s.Depths {
			switch {
			case isMissing(s.Depths[i]):
				run = 0
				continue
			case i > 0 && run > 0 && DaysBetween(s.Dates[i-1], s.Dates[i]) != 1:
				run = 1
			default:
				run++
			}
			if run < period {
				continue
			}
			var sum float32
			for _, v := range s.Depths[i-period+1 : i+1] {
				sum += v
			}
			if !yield(s.Dates[i], sum) {
				return
			}
		}
	}
}

// Exceedances filters a rolling-sum sequence down to the windows whose sum
// meets or exceeds threshold.
func Exceedances(sums iter.Seq2[time.Time, float32], threshold float32) iter.Seq2[time.Time, float32] {
	return func(yield func(time.Time, float32) bool) {
		for d, sum := range sums {
			if sum >= threshold && !yield(d, sum) {
				return
			}
		}
	}
}
