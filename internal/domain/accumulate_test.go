package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func dailySeries(start time.Time, depths ...float32) RainfallSeries {
	dates := make([]time.Time, len(depths))
	for i := range depths {
		dates[i] = start.AddDate(0, 0, i)
	}
	return RainfallSeries{Dates: dates, Depths: depths}
}

type window struct {
	Date time.Time
	Sum  float32
}

func collect(s RainfallSeries, period int) []window {
	var out []window
	for d, sum := range RollingSums(s, period) {
		out = append(out, window{d, sum})
	}
	return out
}

func TestRollingSums(t *testing.T) {
	start := date(2020, 1, 1)
	nan := float32(math.NaN())

	t.Run("no partial windows at series start", func(t *testing.T) {
		got := collect(dailySeries(start, 1, 2, 3, 4), 3)
		require.Len(t, got, 2)
		assert.Equal(t, window{date(2020, 1, 3), 6}, got[0])
		assert.Equal(t, window{date(2020, 1, 4), 9}, got[1])
	})

	t.Run("series shorter than period yields nothing", func(t *testing.T) {
		assert.Empty(t, collect(dailySeries(start, 10, 10), 3))
	})

	t.Run("missing sample breaks every window covering it", func(t *testing.T) {
		got := collect(dailySeries(start, 1, 1, nan, 1, 1, 1), 3)
		require.Len(t, got, 1)
		assert.Equal(t, date(2020, 1, 6), got[0].Date)
	})

	t.Run("date gap breaks the window", func(t *testing.T) {
		s := RainfallSeries{
			Dates:  []time.Time{date(2020, 1, 1), date(2020, 1, 2), date(2020, 1, 4), date(2020, 1, 5)},
			Depths: []float32{5, 5, 5, 5},
		}
		assert.Empty(t, collect(s, 3))
		assert.Len(t, collect(s, 2), 2)
	})

	t.Run("period one passes samples through", func(t *testing.T) {
		got := collect(dailySeries(start, 0, 50, 7), 1)
		require.Len(t, got, 3)
		assert.Equal(t, float32(50), got[1].Sum)
	})

	t.Run("non-positive period yields nothing", func(t *testing.T) {
		assert.Empty(t, collect(dailySeries(start, 1, 2, 3), 0))
	})

	t.Run("stops when consumer stops", func(t *testing.T) {
		n := 0
		for range RollingSums(dailySeries(start, 1, 1, 1, 1, 1), 1) {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})
}

func TestExceedances_MeetsThreshold(t *testing.T) {
	got := 0
	for _, sum := range Exceedances(RollingSums(dailySeries(date(2020, 1, 1), 49.5, 50, 51), 1), 50) {
		assert.GreaterOrEqual(t, sum, float32(50))
		got++
	}
	assert.Equal(t, 2, got)
}

func TestRollingSums_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		period := rapid.IntRange(1, 5).Draw(t, "period")
		n := rapid.IntRange(0, 40).Draw(t, "n")
		threshold := float32(rapid.IntRange(0, 60).Draw(t, "threshold"))
		depths := make([]float32, n)
		for i := range depths {
			if rapid.IntRange(0, 9).Draw(t, "missing") == 0 {
				depths[i] = float32(math.NaN())
				continue
			}
			depths[i] = float32(rapid.IntRange(0, 40).Draw(t, "depth"))
		}
		s := dailySeries(date(2001, 3, 1), depths...)

		reported := map[time.Time]float32{}
		for d, sum := range Exceedances(RollingSums(s, period), threshold) {
			reported[d] = sum
		}

		for i := period - 1; i < n; i++ {
			var sum float32
			complete := true
			for _, v := range depths[i-period+1 : i+1] {
				if isMissing(v) {
					complete = false
					break
				}
				sum += v
			}
			_, ok := reported[s.Dates[i]]
			want := complete && sum >= threshold
			if ok != want {
				t.Fatalf("window ending %s: sum %v threshold %v reported %v", s.Dates[i].Format(DateLayout), sum, threshold, ok)
			}
		}
		for d := range reported {
			if DaysBetween(s.Dates[0], d) < period-1 {
				t.Fatalf("partial window reported at %s", d.Format(DateLayout))
			}
		}
	})
}
