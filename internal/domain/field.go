package domain

import (
	"fmt"
	"math"
	"sort"
)

// Field is a static 2-D grid such as soil clay content. Values are row-major
// over (Latitudes, Longitudes); missing values are NaN. Either axis may be
// ascending or descending.
type Field struct {
	Latitudes  []float64
	Longitudes []float64
	Values     []float64
}

// At returns the value at (row, col).
func (f *Field) At(row, col int) float64 {
	return f.Values[row*len(f.Longitudes)+col]
}

// Validate checks that Values matches the axes.
func (f *Field) Validate() error {
	if want := len(f.Latitudes) * len(f.Longitudes); len(f.Values) != want {
		return fmt.Errorf("field has %d values for a %dx%d grid", len(f.Values), len(f.Latitudes), len(f.Longitudes))
	}
	return nil
}

// bracket finds i and frac such that v = axis[i] + frac*(axis[i+1]-axis[i]).
func bracket(axis []float64, v float64) (int, float64, bool) {
	n := len(axis)
	if n == 0 || math.IsNaN(v) {
		return 0, 0, false
	}
	if n == 1 {
		return 0, 0, v == axis[0]
	}
	sign := 1.0
	if axis[n-1] < axis[0] {
		sign = -1
	}
	if sign*(v-axis[0]) < 0 || sign*(v-axis[n-1]) > 0 {
		return 0, 0, false
	}
	i := sort.Search(n-1, func(i int) bool { return sign*(axis[i+1]-v) >= 0 })
	return i, (v - axis[i]) / (axis[i+1] - axis[i]), true
}

// Bilinear interpolates the field at (lat, lon). Points outside the field, or
// next to a missing value with non-zero weight, are NaN.
func (f *Field) Bilinear(lat, lon float64) float64 {
	i, fy, ok := bracket(f.Latitudes, lat)
	if !ok {
		return math.NaN()
	}
	j, fx, ok := bracket(f.Longitudes, lon)
	if !ok {
		return math.NaN()
	}
	lastRow, lastCol := len(f.Latitudes)-1, len(f.Longitudes)-1
	corners := [4]struct {
		r, c int
		w    float64
	}{
		{i, j, (1 - fy) * (1 - fx)},
		{i, min(j+1, lastCol), (1 - fy) * fx},
		{min(i+1, lastRow), j, fy * (1 - fx)},
		{min(i+1, lastRow), min(j+1, lastCol), fy * fx},
	}
	var sum float64
	for _, k := range corners {
		if k.w == 0 {
			continue
		}
		v := f.At(k.r, k.c)
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += k.w * v
	}
	return sum
}

// Regrid resamples f onto the given axes by bilinear interpolation.
func (f *Field) Regrid(latitudes, longitudes []float64) *Field {
	out := &Field{
		Latitudes:  latitudes,
		Longitudes: longitudes,
		Values:     make([]float64, len(latitudes)*len(longitudes)),
	}
	for r, lat := range latitudes {
		for c, lon := range longitudes {
			out.Values[r*len(longitudes)+c] = f.Bilinear(lat, lon)
		}
	}
	return out
}
