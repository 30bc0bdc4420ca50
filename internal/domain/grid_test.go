package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridBuilder(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	b := NewGridBuilder(GridMeta{Title: "test", Period: 3}, []float64{-12, -12.05}, []float64{130, 130.05, 130.1})
	require.NoError(t, b.Set(0, 1, CellResult{State: Computed, DayOfSeason: 75, YearsMet: 8}))
	require.NoError(t, b.Set(1, 2, CellResult{State: NotMet, YearsMet: 3}))
	require.Error(t, b.Set(2, 0, CellResult{}))

	g := b.Build()
	assert.Equal(t, fixed, g.Meta.CreatedAt)
	rows, cols := g.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 75, g.At(0, 1).DayOfSeason)
	assert.Equal(t, NotMet, g.At(1, 2).State)
	assert.Equal(t, Error, g.At(0, 0).State, "unset cells are errors")
	assert.Equal(t, GridCounts{Computed: 1, NotMet: 1, Error: 4}, g.Counts())

	again, err := NewAnalysisGrid(g.Meta, g.Latitudes, g.Longitudes, g.Cells())
	require.NoError(t, err)
	if diff := cmp.Diff(g, again, cmp.AllowUnexported(AnalysisGrid{})); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}

	_, err = NewAnalysisGrid(g.Meta, g.Latitudes, g.Longitudes, nil)
	require.Error(t, err)
}

func TestGridBuilder_RebuildDiffersOnlyInCreatedAt(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC))
	SetClock(clock)
	t.Cleanup(func() { SetClock(nil) })

	build := func() *AnalysisGrid {
		b := NewGridBuilder(GridMeta{Title: "test", Period: 3, Threshold: 30}, []float64{-12}, []float64{130, 130.05})
		require.NoError(t, b.Set(0, 0, CellResult{State: Computed, DayOfSeason: 90, YearsMet: 9}))
		require.NoError(t, b.Set(0, 1, CellResult{State: NotMet, YearsMet: 2}))
		return b.Build()
	}

	first := build()
	clock.Advance(90 * time.Minute)
	second := build()

	assert.Equal(t, 90*time.Minute, second.Meta.CreatedAt.Sub(first.Meta.CreatedAt))
	if diff := cmp.Diff(first.Cells(), second.Cells()); diff != "" {
		t.Errorf("cells differ (-first +second):\n%s", diff)
	}
	firstMeta, secondMeta := first.Meta, second.Meta
	firstMeta.CreatedAt, secondMeta.CreatedAt = time.Time{}, time.Time{}
	assert.Equal(t, firstMeta, secondMeta)
}

func TestCellState_String(t *testing.T) {
	assert.Equal(t, "computed", Computed.String())
	assert.Equal(t, "not_met", NotMet.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "CellState(9)", CellState(9).String())
}

func TestRainfallCube(t *testing.T) {
	dates := []time.Time{date(2020, 1, 1), date(2020, 1, 2), date(2020, 1, 3)}
	c := NewRainfallCube(dates, []float64{-10, -11}, []float64{140, 141})

	s, err := c.Series(1, 1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(s.Depths[0])), "samples start missing")

	require.NoError(t, c.SetStep(0, []float32{1, 2, 3, 4}))
	require.NoError(t, c.SetStep(2, []float32{5, 6, 7, 8}))
	require.Error(t, c.SetStep(3, []float32{1, 2, 3, 4}))
	require.Error(t, c.SetStep(1, []float32{1}))
	c.Set(1, 1, 0, 9)

	s, err = c.Series(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 9, 7}, s.Depths)
	assert.Equal(t, dates, s.Dates)

	_, err = c.Series(2, 0)
	require.Error(t, err)

	r := c.Restrict(date(2020, 1, 2), date(2020, 1, 9))
	assert.Equal(t, dates[1:], r.Dates())
	s, err = r.Series(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{9, 7}, s.Depths)

	empty := c.Restrict(date(2021, 1, 1), date(2021, 2, 1))
	assert.Empty(t, empty.Dates())
}
