package netcdf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	ncfile "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/green-date/internal/domain"
)

// Variable names of a stored Green Date grid.
const (
	VarGreenDate     = "green_date"
	VarYear          = "green_date_year"
	VarYearsMet      = "years_met"
	VarYearsWithData = "years_with_data"
	VarSpread        = "green_date_spread"
	VarCellState     = "cell_state"
)

// attrs builds an ordered attribute map from alternating keys and values.
func attrs(kv ...any) (api.AttributeMap, error) {
	keys := make([]string, 0, len(kv)/2)
	vals := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := kv[i].(string)
		keys = append(keys, k)
		vals[k] = kv[i+1]
	}
	return util.NewOrderedMap(keys, vals)
}

type variable struct {
	name  string
	value any
	dims  []string
	attrs []any
}

func writeFile(path string, vars []variable, global []any) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	w, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	for _, v := range vars {
		a, err := attrs(v.attrs...)
		if err != nil {
			return fmt.Errorf("%s attributes: %w", v.name, err)
		}
		if err := w.AddVar(v.name, api.Variable{Values: v.value, Dimensions: v.dims, Attributes: a}); err != nil {
			return fmt.Errorf("add %s: %w", v.name, err)
		}
	}
	g, err := attrs(global...)
	if err != nil {
		return fmt.Errorf("global attributes: %w", err)
	}
	return w.AddGlobalAttrs(g)
}

func grid2D[T any](rows, cols int, at func(r, c int) T) [][]T {
	out := make([][]T, rows)
	for r := range out {
		out[r] = make([]T, cols)
		for c := range out[r] {
			out[r][c] = at(r, c)
		}
	}
	return out
}

// WriteGrid stores an AnalysisGrid. green_date is NaN unless the cell was computed.
func WriteGrid(path string, g *domain.AnalysisGrid) error {
	rows, cols := g.Shape()
	nan := float32(math.NaN())
	dims := []string{"latitude", "longitude"}

	vars := []variable{
		{name: "latitude", value: g.Latitudes, dims: []string{"latitude"},
			attrs: []any{"units", "degrees_north", "standard_name", "latitude"}},
		{name: "longitude", value: g.Longitudes, dims: []string{"longitude"},
			attrs: []any{"units", "degrees_east", "standard_name", "longitude"}},
		{name: VarGreenDate, dims: dims,
			value: grid2D(rows, cols, func(r, c int) float32 {
				if res := g.At(r, c); res.State == domain.Computed {
					return float32(res.DayOfSeason)
				}
				return nan
			}),
			attrs: []any{"long_name", "Green Date", "units", fmt.Sprintf("day of season starting month %d", int(g.Meta.SeasonStart))}},
		{name: VarYear, dims: dims,
			value: grid2D(rows, cols, func(r, c int) int16 { return int16(g.At(r, c).Year) }),
			attrs: []any{"long_name", "most recent season with the Green Date crossing"}},
		{name: VarYearsMet, dims: dims,
			value: grid2D(rows, cols, func(r, c int) int16 { return int16(g.At(r, c).YearsMet) }),
			attrs: []any{"long_name", "seasons reaching the threshold"}},
		{name: VarYearsWithData, dims: dims,
			value: grid2D(rows, cols, func(r, c int) int16 { return int16(g.At(r, c).YearsWithData) }),
			attrs: []any{"long_name", "seasons with data"}},
		{name: VarSpread, dims: dims,
			value: grid2D(rows, cols, func(r, c int) float32 {
				if res := g.At(r, c); res.State == domain.Computed {
					return float32(res.Spread)
				}
				return nan
			}),
			attrs: []any{"long_name", "standard deviation of qualifying crossing days", "units", "days"}},
		{name: VarCellState, dims: dims,
			value: grid2D(rows, cols, func(r, c int) int8 { return int8(g.At(r, c).State) }),
			attrs: []any{"flag_values", []int8{0, 1, 2}, "flag_meanings", "computed not_met error"}},
	}

	m := g.Meta
	global := []any{
		"period_days", int32(m.Period),
		"rain_threshold_mm", float64(m.Threshold),
		"season_start_month", int32(m.SeasonStart),
		"first_season", int32(m.FirstSeason),
		"last_season", int32(m.LastSeason),
		"min_years", int32(m.MinYears),
		"statistic", string(m.Statistic),
		"created", m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.Title != "" {
		global = append(global, "title", m.Title)
	}
	if err := writeFile(path, vars, global); err != nil {
		return fmt.Errorf("write grid %s: %w", path, err)
	}
	return nil
}

// GridWriter is a pipeline sink that stores the grid at Path.
type GridWriter struct {
	Path string
}

func (w GridWriter) WriteGrid(_ context.Context, g *domain.AnalysisGrid) error {
	return WriteGrid(w.Path, g)
}

// ReadGrid loads a grid written by WriteGrid. Error reasons are not stored,
// so error cells read back with a generic reason.
func ReadGrid(path string) (*domain.AnalysisGrid, error) {
	group, err := ncfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid %s: %w", path, err)
	}
	defer group.Close()

	lats, err := coordinate(group, latitudeNames)
	if err != nil {
		return nil, err
	}
	lons, err := coordinate(group, longitudeNames)
	if err != nil {
		return nil, err
	}

	fields := map[string][]float64{}
	for _, name := range []string{VarGreenDate, VarYear, VarYearsMet, VarYearsWithData, VarSpread, VarCellState} {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			return nil, fmt.Errorf("grid %s: %s: %w", path, name, err)
		}
		raw, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("grid %s: %s: %w", path, name, err)
		}
		rows, cols, flat, err := flatten2D(raw)
		if err != nil {
			return nil, fmt.Errorf("grid %s: %s: %w", path, name, err)
		}
		if rows != len(lats) || cols != len(lons) {
			return nil, fmt.Errorf("grid %s: %s is %dx%d, want %dx%d", path, name, rows, cols, len(lats), len(lons))
		}
		fields[name] = flat
	}

	cells := make([]domain.CellResult, len(lats)*len(lons))
	for i := range cells {
		state := domain.CellState(fields[VarCellState][i])
		c := domain.CellResult{
			State:         state,
			Year:          int(fields[VarYear][i]),
			YearsMet:      int(fields[VarYearsMet][i]),
			YearsWithData: int(fields[VarYearsWithData][i]),
		}
		switch state {
		case domain.Computed:
			c.DayOfSeason = int(fields[VarGreenDate][i])
			c.Spread = fields[VarSpread][i]
		case domain.NotMet:
		default:
			c.State = domain.Error
			c.Reason = "error"
		}
		cells[i] = c
	}

	meta, err := readMeta(group.Attributes())
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", path, err)
	}
	return domain.NewAnalysisGrid(meta, lats, lons, cells)
}

func readMeta(a api.AttributeMap) (domain.GridMeta, error) {
	if a == nil {
		return domain.GridMeta{}, errors.New("no global attributes")
	}
	num := func(key string) int {
		f, _ := attrFloat(a, key)
		return int(f)
	}
	m := domain.GridMeta{
		Title:       attrString(a, "title"),
		Period:      num("period_days"),
		SeasonStart: time.Month(num("season_start_month")),
		FirstSeason: num("first_season"),
		LastSeason:  num("last_season"),
		MinYears:    num("min_years"),
		Statistic:   domain.Statistic(attrString(a, "statistic")),
	}
	if f, ok := attrFloat(a, "rain_threshold_mm"); ok {
		m.Threshold = float32(f)
	}
	if s := attrString(a, "created"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return domain.GridMeta{}, fmt.Errorf("created: %w", err)
		}
		m.CreatedAt = t
	}
	return m, nil
}

// WriteRainfall stores a cube as a daily rainfall file in the SILO layout:
// variable(time, lat, lon) with a days-since time axis and a fill value for
// missing samples.
func WriteRainfall(path, varName string, cube *domain.RainfallCube) error {
	dates := cube.Dates()
	if len(dates) == 0 {
		return errors.New("write rainfall: empty cube")
	}
	lats, lons := cube.Coordinates()
	epoch := dates[0]
	const fill = float32(-32767)

	days := make([]int32, len(dates))
	for i, d := range dates {
		days[i] = int32(domain.DaysBetween(epoch, d))
	}
	values := make([][][]float32, len(dates))
	for t := range values {
		values[t] = make([][]float32, len(lats))
		for r := range values[t] {
			values[t][r] = make([]float32, len(lons))
		}
	}
	for r := range lats {
		for c := range lons {
			s, err := cube.Series(r, c)
			if err != nil {
				return err
			}
			for t, v := range s.Depths {
				if v != v {
					v = fill
				}
				values[t][r][c] = v
			}
		}
	}

	vars := []variable{
		{name: "time", value: days, dims: []string{"time"},
			attrs: []any{"units", "days since " + epoch.Format(domain.DateLayout), "calendar", "standard"}},
		{name: "lat", value: lats, dims: []string{"lat"}, attrs: []any{"units", "degrees_north"}},
		{name: "lon", value: lons, dims: []string{"lon"}, attrs: []any{"units", "degrees_east"}},
		{name: varName, value: values, dims: []string{"time", "lat", "lon"},
			attrs: []any{"units", "mm", "long_name", "Daily rainfall", "_FillValue", fill}},
	}
	if err := writeFile(path, vars, []any{"title", "synthetic daily rainfall"}); err != nil {
		return fmt.Errorf("write rainfall %s: %w", path, err)
	}
	return nil
}
