package domain

import "errors"

var (
	// ErrMalformedSeries marks a cell series that violates the calendar-complete
	// invariant or carries impossible depths.
	ErrMalformedSeries = errors.New("malformed rainfall series")

	// ErrNoData marks a cell with no usable observation inside the analysed seasons.
	ErrNoData = errors.New("no rainfall data for cell")
)
