package splice_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/couchcryptid/green-date/internal/domain"
	"github.com/couchcryptid/green-date/internal/splice"
)

func TestDefaultRules_ThresholdFor(t *testing.T) {
	r := splice.DefaultRules()
	require.NoError(t, r.Validate())

	tests := []struct {
		clay float64
		want float64
	}{
		{0, 10},
		{19.99, 10},
		{20, 20},
		{29.9, 20},
		{30, 30},
		{34.5, 30},
		{35, 40},
		{44.9, 40},
		{45, 50},
		{80, 50},
	}
	for _, tt := range tests {
		got, ok := r.ThresholdFor(tt.clay)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "clay %g", tt.clay)
	}
	_, ok := r.ThresholdFor(math.NaN())
	assert.False(t, ok)
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, r.Thresholds())
}

func TestThresholdFor_MonotonicInClay(t *testing.T) {
	r := splice.DefaultRules()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 100).Draw(t, "a")
		b := rapid.Float64Range(a, 100).Draw(t, "b")
		ta, _ := r.ThresholdFor(a)
		tb, _ := r.ThresholdFor(b)
		if ta > tb {
			t.Fatalf("threshold for %g%% (%g) exceeds threshold for %g%% (%g)", a, ta, b, tb)
		}
	})
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	r, err := splice.LoadRules("")
	require.NoError(t, err)
	assert.Len(t, r.Bins, 5)

	r, err = splice.LoadRules(write("two.yaml", `
bins:
  - max_clay: 25
    threshold: 15
  - threshold: 35
`))
	require.NoError(t, err)
	got, _ := r.ThresholdFor(30)
	assert.Equal(t, 35.0, got)

	bad := map[string]string{
		"empty.yaml":      "bins: []\n",
		"closed.yaml":     "bins:\n  - max_clay: 20\n    threshold: 10\n",
		"open-early.yaml": "bins:\n  - threshold: 10\n  - threshold: 20\n",
		"descending.yaml": "bins:\n  - max_clay: 30\n    threshold: 10\n  - max_clay: 20\n    threshold: 20\n  - threshold: 30\n",
		"zero.yaml":       "bins:\n  - threshold: 0\n",
		"syntax.yaml":     "bins: [\n",
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := splice.LoadRules(write(name, body))
			require.Error(t, err)
		})
	}
}

func gridAt(t *testing.T, threshold float32, day int) *domain.AnalysisGrid {
	t.Helper()
	meta := domain.GridMeta{
		Period: 3, Threshold: threshold, SeasonStart: time.September,
		FirstSeason: 2011, LastSeason: 2020, MinYears: 7, Statistic: domain.StatisticMedian,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	cells := make([]domain.CellResult, 4)
	for i := range cells {
		cells[i] = domain.CellResult{State: domain.Computed, DayOfSeason: day + i, YearsMet: 10, YearsWithData: 10}
	}
	g, err := domain.NewAnalysisGrid(meta, []float64{-12, -13}, []float64{130, 131}, cells)
	require.NoError(t, err)
	return g
}

func twoBins() splice.Rules {
	limit := 30.0
	return splice.Rules{Bins: []splice.Bin{{MaxClay: &limit, Threshold: 20}, {Threshold: 40}}}
}

func TestSplice(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(created))
	t.Cleanup(func() { domain.SetClock(nil) })

	clay := &domain.Field{
		Latitudes:  []float64{-12, -13},
		Longitudes: []float64{130, 131},
		Values:     []float64{10, 50, math.NaN(), 29},
	}
	grids := map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60), 40: gridAt(t, 40, 120)}

	res, err := splice.Splice(twoBins(), clay, grids)
	require.NoError(t, err)
	g := res.Grid

	assert.Equal(t, 60, g.At(0, 0).DayOfSeason)
	assert.Equal(t, 121, g.At(0, 1).DayOfSeason)
	assert.Equal(t, domain.Error, g.At(1, 0).State)
	assert.Equal(t, "no clay content", g.At(1, 0).Reason)
	assert.Equal(t, 63, g.At(1, 1).DayOfSeason)
	assert.Equal(t, map[float64]int{20: 2, 40: 1}, res.Usage)

	assert.Equal(t, created, g.Meta.CreatedAt)
	assert.Equal(t, float32(0), g.Meta.Threshold)
	assert.Equal(t, 3, g.Meta.Period)
}

func TestSplice_Errors(t *testing.T) {
	clay := &domain.Field{
		Latitudes:  []float64{-12, -13},
		Longitudes: []float64{130, 131},
		Values:     []float64{10, 20, 30, 40},
	}

	_, err := splice.Splice(twoBins(), clay, map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60)})
	require.Error(t, err, "missing 40mm grid")

	other := gridAt(t, 40, 120)
	other.Meta.Period = 5
	_, err = splice.Splice(twoBins(), clay, map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60), 40: other})
	require.ErrorIs(t, err, splice.ErrMismatchedGrids)

	_, err = splice.Splice(twoBins(), clay, map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60), 40: gridAt(t, 20, 120)})
	require.ErrorIs(t, err, splice.ErrMismatchedGrids, "40mm slot holds a 20mm grid")
	assert.Contains(t, err.Error(), "computed at 20mm")

	offGrid := &domain.Field{Latitudes: []float64{-12, -14}, Longitudes: clay.Longitudes, Values: clay.Values}
	_, err = splice.Splice(twoBins(), offGrid, map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60), 40: gridAt(t, 40, 120)})
	require.ErrorIs(t, err, splice.ErrMismatchedGrids)

	short := &domain.Field{Latitudes: clay.Latitudes, Longitudes: clay.Longitudes, Values: []float64{1}}
	_, err = splice.Splice(twoBins(), short, map[float64]*domain.AnalysisGrid{20: gridAt(t, 20, 60), 40: gridAt(t, 40, 120)})
	require.Error(t, err)

	_, err = splice.Splice(splice.Rules{}, clay, nil)
	require.Error(t, err)
}
