package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decade returns a zero-rainfall daily series covering calendar years 2011..2020.
func decade() RainfallSeries {
	start, end := date(2011, 1, 1), date(2020, 12, 31)
	n := DaysBetween(start, end) + 1
	return dailySeries(start, make([]float32, n)...)
}

func setDepth(s RainfallSeries, d time.Time, v float32) {
	s.Depths[DaysBetween(s.Dates[0], d)] = v
}

func decadeCriteria(period int, threshold float32) *Criteria {
	return &Criteria{
		Period:    period,
		Threshold: threshold,
		Calendar:  plainYears,
		Seasons:   plainYears.LastSeasons(date(2011, 1, 1), date(2020, 12, 31), 10),
		MinYears:  7,
		Statistic: StatisticMedian,
	}
}

func TestAnalyzeCell_SevenOfTenAtDay100(t *testing.T) {
	s := decade()
	for year := 2011; year <= 2017; year++ {
		day100 := plainYears.DateOfSeasonDay(year, 100)
		for k := range 3 {
			setDepth(s, day100.AddDate(0, 0, -k), 10)
		}
	}

	got := AnalyzeCell(s, decadeCriteria(3, 30))
	assert.Equal(t, Computed, got.State)
	assert.Equal(t, 100, got.DayOfSeason)
	assert.Equal(t, 7, got.YearsMet)
	assert.Equal(t, 10, got.YearsWithData)
}

func TestAnalyzeCell_ExactThresholdCounts(t *testing.T) {
	s := decade()
	for year := 2011; year <= 2020; year++ {
		setDepth(s, plainYears.DateOfSeasonDay(year, 60), 50)
	}

	got := AnalyzeCell(s, decadeCriteria(1, 50))
	assert.Equal(t, Computed, got.State)
	assert.Equal(t, 60, got.DayOfSeason)
	assert.Equal(t, 10, got.YearsMet)
}

func TestAnalyzeCell_MissingYearIsNotAFailure(t *testing.T) {
	s := decade()
	for year := 2011; year <= 2016; year++ {
		setDepth(s, plainYears.DateOfSeasonDay(year, 40), 60)
	}
	nan := float32(math.NaN())
	missing := plainYears.Season(2020)
	for d := missing.Start; !d.After(missing.End); d = d.AddDate(0, 0, 1) {
		setDepth(s, d, nan)
	}

	got := AnalyzeCell(s, decadeCriteria(3, 30))
	assert.Equal(t, NotMet, got.State)
	assert.Equal(t, 6, got.YearsMet)
	assert.Equal(t, 9, got.YearsWithData)
}

func TestAnalyzeCell_WindowAcrossNewYearBelongsToEndingYear(t *testing.T) {
	s := decade()
	setDepth(s, date(2013, 12, 31), 20)
	setDepth(s, date(2014, 1, 1), 20)

	record := FirstCrossings(RollingSums(s, 2), 30, plainYears, decadeCriteria(2, 30).Seasons)
	require.Len(t, record, 10)
	assert.Nil(t, record[2].Event, "2013")
	require.NotNil(t, record[3].Event, "2014")
	assert.Equal(t, date(2014, 1, 1), record[3].Event.Date)
	assert.Equal(t, 1, record[3].Event.DayOfSeason)
}

func TestFirstCrossings_FirstOccurrenceWins(t *testing.T) {
	s := decade()
	setDepth(s, date(2015, 3, 1), 40)
	setDepth(s, date(2015, 2, 1), 35)
	setDepth(s, date(2015, 6, 1), 90)

	record := FirstCrossings(RollingSums(s, 1), 30, plainYears, decadeCriteria(1, 30).Seasons)
	ev := record[4].Event
	require.NotNil(t, ev)
	assert.Equal(t, date(2015, 2, 1), ev.Date)
	assert.Equal(t, float32(35), ev.Sum)
	assert.Equal(t, 1, record.Met())
}

func TestFirstCrossings_SeptemberSeasons(t *testing.T) {
	sep := SeasonCalendar{StartMonth: time.September}
	s := dailySeries(date(2015, 9, 1), make([]float32, DaysBetween(date(2015, 9, 1), date(2017, 8, 31))+1)...)
	setDepth(s, date(2015, 11, 20), 30)
	setDepth(s, date(2017, 1, 5), 30)

	record := FirstCrossings(RollingSums(s, 1), 30, sep, sep.CompleteSeasons(date(2015, 9, 1), date(2017, 8, 31)))
	require.Len(t, record, 2)
	require.NotNil(t, record[0].Event)
	assert.Equal(t, 2016, record[0].Event.Season)
	assert.Equal(t, 81, record[0].Event.DayOfSeason)
	require.NotNil(t, record[1].Event)
	assert.Equal(t, 127, record[1].Event.DayOfSeason)
}

func TestAnalyzeCell_MalformedSeries(t *testing.T) {
	tests := []struct {
		name   string
		series RainfallSeries
	}{
		{"negative depth", dailySeries(date(2020, 1, 1), 1, -2, 3)},
		{"infinite depth", dailySeries(date(2020, 1, 1), float32(math.Inf(1)))},
		{"length mismatch", RainfallSeries{Dates: []time.Time{date(2020, 1, 1)}}},
		{"duplicate day", RainfallSeries{
			Dates:  []time.Time{date(2020, 1, 1), date(2020, 1, 1)},
			Depths: []float32{1, 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSeries))

			got := AnalyzeCell(tt.series, decadeCriteria(3, 30))
			assert.Equal(t, Error, got.State)
			assert.Contains(t, got.Reason, ErrMalformedSeries.Error())
		})
	}
}

func TestAnalyzeCell_AllMissingIsNoData(t *testing.T) {
	s := decade()
	nan := float32(math.NaN())
	for i := range s.Depths {
		s.Depths[i] = nan
	}
	assert.False(t, s.HasData())
	got := AnalyzeCell(s, decadeCriteria(3, 30))
	assert.Equal(t, Error, got.State)
	assert.Equal(t, ErrNoData.Error(), got.Reason)
}
