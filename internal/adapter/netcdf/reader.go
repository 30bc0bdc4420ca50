// Package netcdf reads gridded daily rainfall and reads/writes Green Date
// grids as netCDF files.
package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	ncfile "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
)

var (
	latitudeNames  = []string{"lat", "latitude"}
	longitudeNames = []string{"lon", "longitude"}
)

type source struct {
	path   string
	group  api.Group
	values api.VarGetter
	pack   packing
	dates  []time.Time
}

// Dataset is a set of daily rainfall files sharing one spatial grid, ordered
// by time. SILO ships one file per calendar year.
type Dataset struct {
	sources    []*source
	latitudes  []float64
	longitudes []float64
	logger     *slog.Logger
}

// Open opens every path and checks that they share a grid and form one
// increasing time axis.
func Open(paths []string, variable string, logger *slog.Logger) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, errors.New("no rainfall files")
	}
	ds := &Dataset{logger: logger}
	for _, path := range paths {
		src, lats, lons, err := openSource(path, variable)
		if err != nil {
			ds.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		ds.sources = append(ds.sources, src)
		if ds.latitudes == nil {
			ds.latitudes, ds.longitudes = lats, lons
			continue
		}
		if !slices.Equal(lats, ds.latitudes) || !slices.Equal(lons, ds.longitudes) {
			ds.Close()
			return nil, fmt.Errorf("open %s: grid differs from %s", path, ds.sources[0].path)
		}
	}

	slices.SortFunc(ds.sources, func(a, b *source) int { return a.dates[0].Compare(b.dates[0]) })
	for i := 1; i < len(ds.sources); i++ {
		prev, cur := ds.sources[i-1], ds.sources[i]
		if !cur.dates[0].After(prev.dates[len(prev.dates)-1]) {
			ds.Close()
			return nil, fmt.Errorf("%s overlaps %s in time", cur.path, prev.path)
		}
	}
	first, last := ds.Extent()
	logger.Info("opened rainfall dataset",
		"files", len(ds.sources),
		"first", first.Format(domain.DateLayout),
		"last", last.Format(domain.DateLayout),
		"latitudes", len(ds.latitudes),
		"longitudes", len(ds.longitudes),
	)
	return ds, nil
}

func openSource(path, variable string) (*source, []float64, []float64, error) {
	group, err := ncfile.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	src := &source{path: path, group: group}
	fail := func(err error) (*source, []float64, []float64, error) {
		group.Close()
		return nil, nil, nil, err
	}

	lats, err := coordinate(group, latitudeNames)
	if err != nil {
		return fail(err)
	}
	lons, err := coordinate(group, longitudeNames)
	if err != nil {
		return fail(err)
	}

	timeVar, err := group.GetVarGetter("time")
	if err != nil {
		return fail(fmt.Errorf("time axis: %w", err))
	}
	raw, err := timeVar.Values()
	if err != nil {
		return fail(fmt.Errorf("time axis: %w", err))
	}
	offsets, err := float64s(raw)
	if err != nil {
		return fail(fmt.Errorf("time axis: %w", err))
	}
	src.dates, err = decodeTimes(offsets, attrString(timeVar.Attributes(), "units"))
	if err != nil {
		return fail(err)
	}
	if len(src.dates) == 0 {
		return fail(errors.New("empty time axis"))
	}

	src.values, err = group.GetVarGetter(variable)
	if err != nil {
		return fail(fmt.Errorf("variable %q: %w", variable, err))
	}
	if dims := src.values.Dimensions(); len(dims) != 3 {
		return fail(fmt.Errorf("variable %q has dimensions %v, want (time, lat, lon)", variable, dims))
	}
	src.pack = packingOf(src.values.Attributes())
	return src, lats, lons, nil
}

func coordinate(group api.Group, names []string) ([]float64, error) {
	for _, name := range names {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			continue
		}
		raw, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return float64s(raw)
	}
	return nil, fmt.Errorf("no coordinate variable named %v", names)
}

// Extent returns the first and last dates of the dataset.
func (d *Dataset) Extent() (first, last time.Time) {
	lastSrc := d.sources[len(d.sources)-1]
	return d.sources[0].dates[0], lastSrc.dates[len(lastSrc.dates)-1]
}

// Coordinates returns the full latitude and longitude axes.
func (d *Dataset) Coordinates() (latitudes, longitudes []float64) {
	return d.latitudes, d.longitudes
}

// Load reads the dates in [from, to] and the cells inside ext into a cube.
// Days missing from the files stay missing in the cube.
func (d *Dataset) Load(ctx context.Context, from, to time.Time, ext config.Extent) (*domain.RainfallCube, error) {
	from, to = domain.Day(from), domain.Day(to)
	latIdx := within(d.latitudes, ext.Bottom, ext.Top)
	lonIdx := within(d.longitudes, ext.Left, ext.Right)
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, fmt.Errorf("extent %s contains no grid cells", ext)
	}

	n := domain.DaysBetween(from, to) + 1
	if n <= 0 {
		return nil, fmt.Errorf("empty date range %s..%s", from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	}
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = from.AddDate(0, 0, i)
	}
	cube := domain.NewRainfallCube(dates, pick(d.latitudes, latIdx), pick(d.longitudes, lonIdx))

	slab := make([]float32, len(latIdx)*len(lonIdx))
	read := 0
	for _, src := range d.sources {
		for t, date := range src.dates {
			if date.Before(from) || date.After(to) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := src.readStep(int64(t), latIdx, lonIdx, len(d.longitudes), slab); err != nil {
				return nil, fmt.Errorf("read %s at %s: %w", src.path, date.Format(domain.DateLayout), err)
			}
			if err := cube.SetStep(domain.DaysBetween(from, date), slab); err != nil {
				return nil, err
			}
			read++
		}
	}
	if read < n {
		d.logger.Warn("rainfall dataset has missing days", "expected", n, "read", read)
	}
	d.logger.Info("loaded rainfall",
		"days", read, "rows", len(latIdx), "cols", len(lonIdx))
	return cube, nil
}

func (s *source) readStep(t int64, latIdx, lonIdx []int, cols int, slab []float32) error {
	raw, err := s.values.GetSlice(t, t+1)
	if err != nil {
		return err
	}
	step, err := first2D(raw)
	if err != nil {
		return err
	}
	rows, width, flat, err := flatten2D(step)
	if err != nil {
		return err
	}
	if width != cols || rows <= latIdx[len(latIdx)-1] {
		return fmt.Errorf("slab is %dx%d, grid needs %d columns", rows, width, cols)
	}
	k := 0
	for _, r := range latIdx {
		for _, c := range lonIdx {
			slab[k] = float32(s.pack.unpack(flat[r*cols+c]))
			k++
		}
	}
	return nil
}

// Close releases every open file.
func (d *Dataset) Close() {
	for _, s := range d.sources {
		s.group.Close()
	}
	d.sources = nil
}

func within(axis []float64, lo, hi float64) []int {
	var idx []int
	for i, v := range axis {
		if v >= lo && v <= hi {
			idx = append(idx, i)
		}
	}
	return idx
}

func pick(axis []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = axis[j]
	}
	return out
}
