package netcdf

import (
	"fmt"

	ncfile "github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/couchcryptid/green-date/internal/domain"
)

// ReadField loads a 2-D (lat, lon) variable, applying fill and packing attributes.
func ReadField(path, variable string) (*domain.Field, error) {
	group, err := ncfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer group.Close()

	lats, err := coordinate(group, latitudeNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lons, err := coordinate(group, longitudeNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	vg, err := group.GetVarGetter(variable)
	if err != nil {
		return nil, fmt.Errorf("%s: variable %q: %w", path, variable, err)
	}
	raw, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("%s: variable %q: %w", path, variable, err)
	}
	rows, cols, flat, err := flatten2D(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: variable %q: %w", path, variable, err)
	}
	if rows != len(lats) || cols != len(lons) {
		return nil, fmt.Errorf("%s: %q is %dx%d, want %dx%d", path, variable, rows, cols, len(lats), len(lons))
	}
	pack := packingOf(vg.Attributes())
	for i, v := range flat {
		flat[i] = pack.unpack(v)
	}
	return &domain.Field{Latitudes: lats, Longitudes: lons, Values: flat}, nil
}

// WriteField stores a 2-D field as variable(lat, lon).
func WriteField(path, varName, units string, f *domain.Field) error {
	values := grid2D(len(f.Latitudes), len(f.Longitudes), func(r, c int) float32 {
		return float32(f.At(r, c))
	})
	vars := []variable{
		{name: "lat", value: f.Latitudes, dims: []string{"lat"}, attrs: []any{"units", "degrees_north"}},
		{name: "lon", value: f.Longitudes, dims: []string{"lon"}, attrs: []any{"units", "degrees_east"}},
		{name: varName, value: values, dims: []string{"lat", "lon"}, attrs: []any{"units", units}},
	}
	if err := writeFile(path, vars, nil); err != nil {
		return fmt.Errorf("write field %s: %w", path, err)
	}
	return nil
}
