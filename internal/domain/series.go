package domain

import (
	"fmt"
	"math"
	"time"
)

// RainfallSeries is the daily rainfall record of one cell. Dates are UTC
// midnights, strictly increasing. Depths are millimetres; NaN marks a missing
// observation.
type RainfallSeries struct {
	Dates  []time.Time
	Depths []float32
}

// Len returns the number of samples in the series.
func (s RainfallSeries) Len() int { return len(s.Depths) }

// Validate checks the structural invariants of the series. Gaps in the date
// axis are allowed here (the accumulator skips windows that span them);
// out-of-order dates, duplicate days and impossible depths are not.
func (s RainfallSeries) Validate() error {
	if len(s.Dates) != len(s.Depths) {
		return fmt.Errorf("%w: %d dates for %d depths", ErrMalformedSeries, len(s.Dates), len(s.Depths))
	}
	for i, v := range s.Depths {
		if v < 0 || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: depth %v on %s", ErrMalformedSeries, v, s.Dates[i].Format(DateLayout))
		}
		if i > 0 && DaysBetween(s.Dates[i-1], s.Dates[i]) < 1 {
			return fmt.Errorf("%w: %s does not follow %s", ErrMalformedSeries,
				s.Dates[i].Format(DateLayout), s.Dates[i-1].Format(DateLayout))
		}
	}
	return nil
}

// HasData reports whether at least one sample is an observation.
func (s RainfallSeries) HasData() bool {
	for _, v := range s.Depths {
		if !isMissing(v) {
			return true
		}
	}
	return false
}

func isMissing(v float32) bool {
	return v != v
}
