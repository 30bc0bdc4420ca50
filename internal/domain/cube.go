package domain

import (
	"fmt"
	"math"
	"time"
)

// RainfallCube is an in-memory (time, latitude, longitude) rainfall grid laid
// out cell-major, so that each cell's series is a contiguous slice.
type RainfallCube struct {
	dates      []time.Time
	latitudes  []float64
	longitudes []float64
	data       []float32
}

// NewRainfallCube allocates a cube with every sample missing.
func NewRainfallCube(dates []time.Time, latitudes, longitudes []float64) *RainfallCube {
	data := make([]float32, len(dates)*len(latitudes)*len(longitudes))
	nan := float32(math.NaN())
	for i := range data {
		data[i] = nan
	}
	return &RainfallCube{
		dates:      dates,
		latitudes:  latitudes,
		longitudes: longitudes,
		data:       data,
	}
}

func (c *RainfallCube) offset(row, col int) int {
	return (row*len(c.longitudes) + col) * len(c.dates)
}

// Shape returns the number of latitude rows and longitude columns.
func (c *RainfallCube) Shape() (rows, cols int) {
	return len(c.latitudes), len(c.longitudes)
}

// Coordinates returns the latitude and longitude axes.
func (c *RainfallCube) Coordinates() (latitudes, longitudes []float64) {
	return c.latitudes, c.longitudes
}

// Dates returns the time axis.
func (c *RainfallCube) Dates() []time.Time {
	return c.dates
}

// SetStep stores one time step given as a row-major (latitude, longitude) slab.
func (c *RainfallCube) SetStep(step int, slab []float32) error {
	rows, cols := c.Shape()
	if step < 0 || step >= len(c.dates) {
		return fmt.Errorf("time step %d outside [0, %d)", step, len(c.dates))
	}
	if len(slab) != rows*cols {
		return fmt.Errorf("slab has %d values, want %d", len(slab), rows*cols)
	}
	for r := range rows {
		for col := range cols {
			c.data[c.offset(r, col)+step] = slab[r*cols+col]
		}
	}
	return nil
}

// Set stores a single sample.
func (c *RainfallCube) Set(step, row, col int, v float32) {
	c.data[c.offset(row, col)+step] = v
}

// Series returns the cell's rainfall series. The depths alias the cube and
// must not be modified.
func (c *RainfallCube) Series(row, col int) (RainfallSeries, error) {
	rows, cols := c.Shape()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return RainfallSeries{}, fmt.Errorf("cell (%d, %d) outside %dx%d grid", row, col, rows, cols)
	}
	o := c.offset(row, col)
	return RainfallSeries{Dates: c.dates, Depths: c.data[o : o+len(c.dates) : o+len(c.dates)]}, nil
}

// Restrict returns a copy of the cube holding only dates inside [from, to].
func (c *RainfallCube) Restrict(from, to time.Time) *RainfallCube {
	from, to = Day(from), Day(to)
	lo, hi := len(c.dates), 0
	for i, d := range c.dates {
		if d.Before(from) || d.After(to) {
			continue
		}
		lo = min(lo, i)
		hi = max(hi, i+1)
	}
	if lo >= hi {
		return &RainfallCube{latitudes: c.latitudes, longitudes: c.longitudes}
	}
	out := &RainfallCube{
		dates:      c.dates[lo:hi],
		latitudes:  c.latitudes,
		longitudes: c.longitudes,
	}
	n := hi - lo
	out.data = make([]float32, len(c.latitudes)*len(c.longitudes)*n)
	for cell := range len(c.latitudes) * len(c.longitudes) {
		src := cell * len(c.dates)
		copy(out.data[cell*n:(cell+1)*n], c.data[src+lo:src+hi])
	}
	return out
}
