package splice

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/green-date/internal/domain"
)

// ErrMismatchedGrids is returned when the input grids were not computed on
// the same grid with the same parameters apart from the threshold.
var ErrMismatchedGrids = errors.New("green date grids do not match")

// Result is a spliced grid and the number of cells drawn from each threshold.
type Result struct {
	Grid  *domain.AnalysisGrid
	Usage map[float64]int
}

func sameRun(a, b domain.GridMeta) bool {
	return a.Period == b.Period &&
		a.SeasonStart == b.SeasonStart &&
		a.FirstSeason == b.FirstSeason &&
		a.LastSeason == b.LastSeason &&
		a.MinYears == b.MinYears &&
		a.Statistic == b.Statistic
}

// Splice takes, for every cell, the result from the grid whose threshold the
// rules assign to that cell's clay content. clay must already be on the grid
// of the inputs. Cells without clay content become Error cells.
func Splice(rules Rules, clay *domain.Field, grids map[float64]*domain.AnalysisGrid) (*Result, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := clay.Validate(); err != nil {
		return nil, fmt.Errorf("clay content: %w", err)
	}
	thresholds := rules.Thresholds()
	for _, thr := range thresholds {
		g := grids[thr]
		if g == nil {
			return nil, fmt.Errorf("no green date grid for %gmm", thr)
		}
		if g.Meta.Threshold != float32(thr) {
			return nil, fmt.Errorf("%w: grid supplied for %gmm was computed at %gmm", ErrMismatchedGrids, thr, g.Meta.Threshold)
		}
	}
	base := grids[thresholds[0]]
	for _, thr := range thresholds[1:] {
		g := grids[thr]
		if !sameRun(base.Meta, g.Meta) {
			return nil, fmt.Errorf("%w: %gmm grid was computed with different parameters", ErrMismatchedGrids, thr)
		}
		if !slices.Equal(base.Latitudes, g.Latitudes) || !slices.Equal(base.Longitudes, g.Longitudes) {
			return nil, fmt.Errorf("%w: %gmm grid has different coordinates", ErrMismatchedGrids, thr)
		}
	}
	if !slices.Equal(base.Latitudes, clay.Latitudes) || !slices.Equal(base.Longitudes, clay.Longitudes) {
		return nil, fmt.Errorf("%w: clay content is not on the green date grid", ErrMismatchedGrids)
	}

	meta := base.Meta
	meta.Title = "Green Date by soil clay content"
	meta.Threshold = 0
	meta.CreatedAt = time.Time{}

	b := domain.NewGridBuilder(meta, base.Latitudes, base.Longitudes)
	usage := make(map[float64]int, len(thresholds))
	rows, cols := base.Shape()
	for r := range rows {
		for c := range cols {
			thr, ok := rules.ThresholdFor(clay.At(r, c))
			if !ok {
				if err := b.Set(r, c, domain.CellResult{State: domain.Error, Reason: "no clay content"}); err != nil {
					return nil, err
				}
				continue
			}
			if err := b.Set(r, c, grids[thr].At(r, c)); err != nil {
				return nil, err
			}
			usage[thr]++
		}
	}
	return &Result{Grid: b.Build(), Usage: usage}, nil
}
