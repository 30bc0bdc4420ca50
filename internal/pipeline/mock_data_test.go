package pipeline_test

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
	"github.com/couchcryptid/green-date/internal/observability"
	"github.com/couchcryptid/green-date/internal/pipeline"
)

// syntheticCube builds a 2x2 cube over seasons 2011..2020 (September start):
//
//	(0,0) 10 mm on days 98-100 of every season
//	(0,1) dry
//	(1,0) entirely missing
//	(1,1) 30 mm on day 60 of seasons 2011..2017 only
func syntheticCube(t *testing.T) (*domain.RainfallCube, config.AnalysisConfig) {
	t.Helper()
	first := time.Date(2010, 8, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, domain.DaysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	cube := domain.NewRainfallCube(dates, []float64{-12, -12.05}, []float64{131, 131.05})
	for i := range dates {
		cube.Set(i, 0, 0, 0)
		cube.Set(i, 0, 1, 0)
		cube.Set(i, 1, 1, 0)
	}

	analysis, err := config.DefaultAnalysis().Resolve(first, last)
	require.NoError(t, err)
	cal := analysis.Calendar()
	for _, s := range analysis.Seasons() {
		for day := 98; day <= 100; day++ {
			cube.Set(domain.DaysBetween(first, cal.DateOfSeasonDay(s.Year, day)), 0, 0, 10)
		}
		if s.Year <= 2017 {
			cube.Set(domain.DaysBetween(first, cal.DateOfSeasonDay(s.Year, 60)), 1, 1, 30)
		}
	}
	return cube, analysis
}

func TestPipeline_SyntheticCube(t *testing.T) {
	freezeClock(t)
	cube, analysis := syntheticCube(t)

	run := func(workers, chunkRows int) *domain.AnalysisGrid {
		m := observability.NewMetricsForTesting()
		d := pipeline.NewDispatcher(pipeline.NewAnalyzer(analysis.Criteria()), workers, chunkRows, slog.Default(), m)
		grid, err := d.Dispatch(context.Background(), cube, domain.GridMeta{Period: analysis.Period})
		require.NoError(t, err)
		return grid
	}

	grid := run(2, 1)

	wet := grid.At(0, 0)
	assert.Equal(t, domain.Computed, wet.State)
	assert.Equal(t, 100, wet.DayOfSeason)
	assert.Equal(t, 10, wet.YearsMet)
	assert.Equal(t, 2020, wet.Year)

	dry := grid.At(0, 1)
	assert.Equal(t, domain.NotMet, dry.State)
	assert.Zero(t, dry.YearsMet)

	ocean := grid.At(1, 0)
	assert.Equal(t, domain.Error, ocean.State)
	assert.Equal(t, domain.ErrNoData.Error(), ocean.Reason)

	seven := grid.At(1, 1)
	assert.Equal(t, domain.Computed, seven.State)
	assert.Equal(t, 60, seven.DayOfSeason)
	assert.Equal(t, 7, seven.YearsMet)

	t.Run("idempotent", func(t *testing.T) {
		if diff := cmp.Diff(grid.Cells(), run(2, 1).Cells()); diff != "" {
			t.Errorf("second run differs (-want +got):\n%s", diff)
		}
	})

	t.Run("chunking independent", func(t *testing.T) {
		if diff := cmp.Diff(grid.Cells(), run(1, 2).Cells()); diff != "" {
			t.Errorf("single chunk differs (-want +got):\n%s", diff)
		}
	})

	t.Run("restricting to the data range keeps results", func(t *testing.T) {
		from, to := analysis.DataRange()
		restricted := cube.Restrict(from, to)
		d := pipeline.NewDispatcher(pipeline.NewAnalyzer(analysis.Criteria()), 1, 1, slog.Default(), observability.NewMetricsForTesting())
		got, err := d.Dispatch(context.Background(), restricted, domain.GridMeta{Period: analysis.Period})
		require.NoError(t, err)
		if diff := cmp.Diff(grid.Cells(), got.Cells()); diff != "" {
			t.Errorf("restricted cube differs (-want +got):\n%s", diff)
		}
	})

	assert.False(t, math.IsNaN(wet.Spread))
}
