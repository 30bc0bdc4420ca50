package domain

import (
	"fmt"
	"time"
)

// GridMeta describes how an AnalysisGrid was produced.
type GridMeta struct {
	Title       string
	Period      int
	Threshold   float32
	SeasonStart time.Month
	FirstSeason int
	LastSeason  int
	MinYears    int
	Statistic   Statistic
	CreatedAt   time.Time
}

// AnalysisGrid maps (row, col) to a CellResult. Rows follow Latitudes and
// columns follow Longitudes. A grid is immutable once built. Re-running an
// analysis reproduces the cells and the run parameters in Meta but not
// Meta.CreatedAt, which records when each grid was built.
type AnalysisGrid struct {
	Meta       GridMeta
	Latitudes  []float64
	Longitudes []float64
	cells      []CellResult
}

// Shape returns the number of rows and columns.
func (g *AnalysisGrid) Shape() (rows, cols int) {
	return len(g.Latitudes), len(g.Longitudes)
}

// At returns the result for one cell.
func (g *AnalysisGrid) At(row, col int) CellResult {
	return g.cells[row*len(g.Longitudes)+col]
}

// Cells returns a copy of all results in row-major order.
func (g *AnalysisGrid) Cells() []CellResult {
	out := make([]CellResult, len(g.cells))
	copy(out, g.cells)
	return out
}

// GridCounts tallies cells by terminal state.
type GridCounts struct {
	Computed int
	NotMet   int
	Error    int
}

// Counts tallies the grid's cells by state.
func (g *AnalysisGrid) Counts() GridCounts {
	var c GridCounts
	for _, r := range g.cells {
		switch r.State {
		case Computed:
			c.Computed++
		case NotMet:
			c.NotMet++
		default:
			c.Error++
		}
	}
	return c
}

// GridBuilder assembles an AnalysisGrid. It is not safe for concurrent use:
// a single collector owns it while workers send results.
type GridBuilder struct {
	meta       GridMeta
	latitudes  []float64
	longitudes []float64
	cells      []CellResult
}

// NewGridBuilder creates a builder for the given coordinates. Every cell
// starts as an Error cell until Set is called for it.
func NewGridBuilder(meta GridMeta, latitudes, longitudes []float64) *GridBuilder {
	cells := make([]CellResult, len(latitudes)*len(longitudes))
	for i := range cells {
		cells[i] = CellResult{State: Error, Reason: "not computed"}
	}
	return &GridBuilder{
		meta:       meta,
		latitudes:  latitudes,
		longitudes: longitudes,
		cells:      cells,
	}
}

// Set stores the result for one cell.
func (b *GridBuilder) Set(row, col int, r CellResult) error {
	if row < 0 || row >= len(b.latitudes) || col < 0 || col >= len(b.longitudes) {
		return fmt.Errorf("cell (%d, %d) outside %dx%d grid", row, col, len(b.latitudes), len(b.longitudes))
	}
	b.cells[row*len(b.longitudes)+col] = r
	return nil
}

// Build freezes the builder into an AnalysisGrid stamped with the current time.
// The builder must not be used afterwards.
func (b *GridBuilder) Build() *AnalysisGrid {
	meta := b.meta
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = stamp()
	}
	g := &AnalysisGrid{
		Meta:       meta,
		Latitudes:  b.latitudes,
		Longitudes: b.longitudes,
		cells:      b.cells,
	}
	b.cells = nil
	return g
}

// NewAnalysisGrid builds a grid directly from row-major cells, as read back
// from a stored result.
func NewAnalysisGrid(meta GridMeta, latitudes, longitudes []float64, cells []CellResult) (*AnalysisGrid, error) {
	if len(cells) != len(latitudes)*len(longitudes) {
		return nil, fmt.Errorf("%d cells for a %dx%d grid", len(cells), len(latitudes), len(longitudes))
	}
	return &AnalysisGrid{Meta: meta, Latitudes: latitudes, Longitudes: longitudes, cells: cells}, nil
}
