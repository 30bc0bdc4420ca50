// Command validate re-computes a sample of cells of a Green Date grid serially
// from the rainfall it was computed from and checks the grid against them.
// It also checks the grid's metadata and per-cell invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  --daily_rain data/mock/2009.daily_rain.nc,...,data/mock/2020.daily_rain.nc \
//	  --green_date results/green_date_30mm.nc
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/green-date/internal/adapter/netcdf"
	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	p := argparse.NewParser("validate", "Checks a Green Date grid against its rainfall data")
	dailyRain := p.String("", "daily_rain", &argparse.Options{Required: true, Help: "Comma separated rainfall netCDF files"})
	variable := p.String("", "variable", &argparse.Options{Default: "daily_rain", Help: "Rainfall variable name"})
	greenDate := p.String("", "green_date", &argparse.Options{Required: true, Help: "Green Date netCDF grid"})
	samples := p.Int("", "samples", &argparse.Options{Default: 25, Help: "Cells to re-compute"})
	if err := p.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, p.Usage(err))
		os.Exit(2)
	}

	if code := run(splitFiles(*dailyRain), *variable, *greenDate, *samples); code != 0 {
		os.Exit(code)
	}
}

func splitFiles(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func run(files []string, variable, gridPath string, samples int) int {
	fmt.Println("=== Green Date Grid Validation ===")
	fmt.Println()

	grid, err := netcdf.ReadGrid(gridPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read grid: %v\n", err)
		return 1
	}

	meta := validateMetadata(grid)
	analysis := analysisOf(grid.Meta)

	ds, err := netcdf.Open(files, variable, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open rainfall: %v\n", err)
		return 1
	}
	defer ds.Close()

	from, to := analysis.DataRange()
	cube, err := ds.Load(context.Background(), from, to, extentOf(grid))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load rainfall: %v\n", err)
		return 1
	}

	phases := []*phase{
		meta,
		validateCoordinates(grid, cube),
		validateRecomputation(grid, cube, analysis, samples),
		validateCellInvariants(grid),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	counts := grid.Counts()
	rows, cols := grid.Shape()
	fmt.Println()
	fmt.Printf("Cells: %d (%dx%d), %d computed, %d not met, %d error\n",
		rows*cols, rows, cols, counts.Computed, counts.NotMet, counts.Error)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// analysisOf rebuilds the parameters a grid was computed with.
func analysisOf(m domain.GridMeta) config.AnalysisConfig {
	a := config.DefaultAnalysis()
	a.Period = m.Period
	a.RainThreshold = float64(m.Threshold)
	a.SeasonStart = m.SeasonStart
	a.MinYears = m.MinYears
	a.Statistic = m.Statistic
	a.Years = m.LastSeason - m.FirstSeason + 1
	cal := a.Calendar()
	a.StartDate = cal.Season(m.FirstSeason).Start
	a.EndDate = cal.Season(m.LastSeason).End
	return a
}

func extentOf(g *domain.AnalysisGrid) config.Extent {
	return config.Extent{
		Left:   slices.Min(g.Longitudes),
		Right:  slices.Max(g.Longitudes),
		Bottom: slices.Min(g.Latitudes),
		Top:    slices.Max(g.Latitudes),
	}
}

// ── Phases ──

func validateMetadata(g *domain.AnalysisGrid) *phase {
	p := &phase{name: "Grid metadata"}
	m := g.Meta
	if m.Period <= 0 {
		p.errorf("period_days = %d, want > 0", m.Period)
	}
	if m.Threshold < 0 {
		p.errorf("rain_threshold_mm = %g, want >= 0", m.Threshold)
	}
	if m.FirstSeason > m.LastSeason {
		p.errorf("first_season %d after last_season %d", m.FirstSeason, m.LastSeason)
	}
	if years := m.LastSeason - m.FirstSeason + 1; m.MinYears < 1 || m.MinYears > years {
		p.errorf("min_years = %d outside 1..%d", m.MinYears, years)
	}
	if _, err := domain.ParseStatistic(string(m.Statistic)); err != nil {
		p.errorf("statistic: %v", err)
	}
	if m.SeasonStart < time.January || m.SeasonStart > time.December {
		p.errorf("season_start_month = %d", m.SeasonStart)
	}
	if m.CreatedAt.IsZero() {
		p.errorf("created timestamp missing")
	}
	return p
}

func validateCoordinates(g *domain.AnalysisGrid, cube *domain.RainfallCube) *phase {
	p := &phase{name: "Coordinates match rainfall grid"}
	lats, lons := cube.Coordinates()
	if !slices.Equal(lats, g.Latitudes) {
		p.errorf("latitudes: grid has %d, rainfall has %d", len(g.Latitudes), len(lats))
	}
	if !slices.Equal(lons, g.Longitudes) {
		p.errorf("longitudes: grid has %d, rainfall has %d", len(g.Longitudes), len(lons))
	}
	return p
}

// validateRecomputation analyses evenly spaced cells one at a time, without
// the dispatcher, and compares them with the stored grid.
func validateRecomputation(g *domain.AnalysisGrid, cube *domain.RainfallCube, a config.AnalysisConfig, samples int) *phase {
	p := &phase{name: "Serial recomputation of sampled cells"}
	rows, cols := g.Shape()
	cubeRows, cubeCols := cube.Shape()
	if rows != cubeRows || cols != cubeCols {
		p.errorf("grid is %dx%d, rainfall is %dx%d", rows, cols, cubeRows, cubeCols)
		return p
	}
	total := rows * cols
	stride := max(total/max(samples, 1), 1)
	criteria := a.Criteria()
	checked := 0
	for i := 0; i < total && checked < samples; i += stride {
		r, c := i/cols, i%cols
		checked++
		series, err := cube.Series(r, c)
		if err != nil {
			p.errorf("cell (%d,%d): %v", r, c, err)
			continue
		}
		want := domain.AnalyzeCell(series, criteria)
		got := g.At(r, c)
		switch {
		case want.State != got.State:
			p.errorf("cell (%d,%d): state %s, recomputed %s", r, c, got.State, want.State)
		case want.State == domain.Error:
		case want.DayOfSeason != got.DayOfSeason || want.Year != got.Year:
			p.errorf("cell (%d,%d): day %d of %d, recomputed day %d of %d",
				r, c, got.DayOfSeason, got.Year, want.DayOfSeason, want.Year)
		case want.YearsMet != got.YearsMet || want.YearsWithData != got.YearsWithData:
			p.errorf("cell (%d,%d): %d/%d seasons met, recomputed %d/%d",
				r, c, got.YearsMet, got.YearsWithData, want.YearsMet, want.YearsWithData)
		}
	}
	fmt.Printf("  Recomputed %d of %d cells\n", checked, total)
	return p
}

func validateCellInvariants(g *domain.AnalysisGrid) *phase {
	p := &phase{name: "Cell invariants"}
	rows, cols := g.Shape()
	years := g.Meta.LastSeason - g.Meta.FirstSeason + 1
	for r := range rows {
		for c := range cols {
			res := g.At(r, c)
			if res.YearsMet > res.YearsWithData || res.YearsWithData > years {
				p.errorf("cell (%d,%d): %d met of %d with data of %d seasons", r, c, res.YearsMet, res.YearsWithData, years)
			}
			switch res.State {
			case domain.Computed:
				if res.YearsMet < g.Meta.MinYears {
					p.errorf("cell (%d,%d): computed with only %d seasons met", r, c, res.YearsMet)
				}
				if res.DayOfSeason < 1 || res.DayOfSeason > 366 {
					p.errorf("cell (%d,%d): day of season %d", r, c, res.DayOfSeason)
				}
				if res.Year < g.Meta.FirstSeason || res.Year > g.Meta.LastSeason {
					p.errorf("cell (%d,%d): year %d outside %d-%d", r, c, res.Year, g.Meta.FirstSeason, g.Meta.LastSeason)
				}
			case domain.NotMet:
				if res.YearsMet >= g.Meta.MinYears {
					p.errorf("cell (%d,%d): not met with %d seasons met", r, c, res.YearsMet)
				}
			}
		}
	}
	return p
}
