// Command genmock writes a deterministic synthetic daily rainfall dataset in
// the SILO layout (one netCDF file per calendar year) and, optionally, a clay
// content grid, for exercising greendate, greenmap and greensplice without
// real data.
//
// Usage:
//
//	go run ./cmd/genmock --out_dir data/mock --start_year 2009 --end_year 2020 --clay
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/green-date/internal/adapter/netcdf"
	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
)

const variable = "daily_rain"

// mockGrid is the synthetic dataset's spatial layout.
type mockGrid struct {
	extent     config.Extent
	resolution float64
	seed       uint64
}

func (g mockGrid) axis(lo, hi float64) []float64 {
	var out []float64
	for v := lo; v <= hi+1e-9; v += g.resolution {
		out = append(out, math.Round(v*1000)/1000)
	}
	return out
}

func (g mockGrid) latitudes() []float64 {
	// Descending, north first, as SILO stores it.
	up := g.axis(g.extent.Bottom, g.extent.Top)
	out := make([]float64, len(up))
	for i, v := range up {
		out[len(up)-1-i] = v
	}
	return out
}

func (g mockGrid) longitudes() []float64 { return g.axis(g.extent.Left, g.extent.Right) }

// ocean marks the north-east corner cell as having no data.
func (g mockGrid) ocean(row, col, cols int) bool {
	return row == 0 && col == cols-1
}

// onset is the day of year the wet season starts at lat: earlier in the
// north, from mid October at 12°S to late December at 28°S.
func onset(lat float64) int {
	return 288 + int(math.Round((-12-lat)*4))
}

// rain draws one day of rainfall for a cell.
func rain(rng *rand.Rand, d time.Time, lat float64) float32 {
	doy := d.YearDay()
	wet := doy >= onset(lat) || doy <= 90
	p, scale := 0.04, 3.0
	if wet {
		p, scale = 0.4, 14.0
	}
	if rng.Float64() >= p {
		return 0
	}
	return float32(math.Round(rng.ExpFloat64()*scale*10) / 10)
}

func (g mockGrid) year(y int) *domain.RainfallCube {
	from := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := domain.DaysBetween(from, from.AddDate(1, 0, 0))
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = from.AddDate(0, 0, i)
	}
	lats, lons := g.latitudes(), g.longitudes()
	cube := domain.NewRainfallCube(dates, lats, lons)
	for r, lat := range lats {
		for c := range lons {
			if g.ocean(r, c, len(lons)) {
				continue
			}
			rng := rand.New(rand.NewPCG(g.seed, uint64(y)<<32|uint64(r)<<16|uint64(c)))
			for step, d := range dates {
				cube.Set(step, r, c, rain(rng, d, lat))
			}
		}
	}
	return cube
}

// clay is a west to east gradient from sandy to heavy clay soils on a grid
// twice as coarse as the rainfall.
func (g mockGrid) clay() *domain.Field {
	coarse := mockGrid{extent: g.extent, resolution: g.resolution * 2}
	f := &domain.Field{Latitudes: coarse.latitudes(), Longitudes: coarse.longitudes()}
	span := g.extent.Right - g.extent.Left
	for range f.Latitudes {
		for _, lon := range f.Longitudes {
			f.Values = append(f.Values, 10+50*(lon-g.extent.Left)/span)
		}
	}
	return f
}

func main() {
	if err := run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	p := argparse.NewParser("genmock", "Writes synthetic daily rainfall netCDF files")
	outDir := p.String("", "out_dir", &argparse.Options{Default: "data/mock", Help: "Output directory"})
	startYear := p.Int("", "start_year", &argparse.Options{Default: 2009, Help: "First calendar year"})
	endYear := p.Int("", "end_year", &argparse.Options{Default: 2020, Help: "Last calendar year"})
	extent := p.String("", "extent", &argparse.Options{Default: "130,134,-16,-12", Help: "left,right,bottom,top"})
	resolution := p.Float("", "resolution", &argparse.Options{Default: 0.5, Help: "Grid spacing in degrees"})
	seed := p.Int("", "seed", &argparse.Options{Default: 1, Help: "Random seed"})
	withClay := p.Flag("", "clay", &argparse.Options{Help: "Also write clay.nc"})
	if err := p.Parse(args); err != nil {
		return fmt.Errorf("%s", p.Usage(err))
	}

	ext, err := config.ParseExtent(*extent)
	if err != nil {
		return err
	}
	if *resolution <= 0 || *startYear > *endYear {
		return fmt.Errorf("need a positive resolution and start_year <= end_year")
	}
	g := mockGrid{extent: ext, resolution: *resolution, seed: uint64(*seed)}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	for y := *startYear; y <= *endYear; y++ {
		path := filepath.Join(*outDir, fmt.Sprintf("%d.%s.nc", y, variable))
		if err := netcdf.WriteRainfall(path, variable, g.year(y)); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	if *withClay {
		path := filepath.Join(*outDir, "clay.nc")
		if err := netcdf.WriteField(path, "clay_content_percentage", "%", g.clay()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
