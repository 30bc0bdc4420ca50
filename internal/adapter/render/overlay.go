package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/couchcryptid/green-date/internal/config"
)

// Line is a border polyline in degrees.
type Line []geom.Point

// Place is a labelled town marker.
type Place struct {
	Name string
	At   geom.Point
}

// Overlays are drawn on top of the grid.
type Overlays struct {
	Borders []Line
	Places  []Place
}

func bounds(ext config.Extent) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: ext.Left, Y: ext.Bottom},
		Max: geom.Point{X: ext.Right, Y: ext.Top},
	}
}

// LoadBorders reads polygon or line outlines from a shapefile, keeping those
// that overlap ext.
func LoadBorders(path string, ext config.Extent) ([]Line, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open borders %s: %w", path, err)
	}
	defer d.Close()

	b := bounds(ext)
	var lines []Line
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		if g == nil || !b.Overlaps(g.Bounds()) {
			continue
		}
		lines = append(lines, outlines(g)...)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("read borders %s: %w", path, err)
	}
	return lines, nil
}

func outlines(g geom.Geom) []Line {
	var out []Line
	switch t := g.(type) {
	case geom.Polygonal:
		for _, poly := range t.Polygons() {
			for _, ring := range poly {
				out = append(out, Line(ring))
			}
		}
	case geom.MultiLineString:
		for _, ls := range t {
			out = append(out, Line(ls))
		}
	case geom.LineString:
		out = append(out, Line(t))
	}
	return out
}

// PlaceFilter selects which populated places get a label. A place is kept
// when it lies in Country, north of MinLatitude, is not skipped by name, and
// is either larger than MinPopulation or a capital of one of Classes.
type PlaceFilter struct {
	Country       string
	MinLatitude   float64
	MinPopulation float64
	Classes       []string
	Skip          []string
}

// DefaultPlaceFilter labels the larger towns of northern Australia, leaving
// out those that crowd the Queensland coast at map scale.
func DefaultPlaceFilter() PlaceFilter {
	return PlaceFilter{
		Country:       "Australia",
		MinLatitude:   -28,
		MinPopulation: 1000,
		Classes: []string{
			"Admin-0 capital", "Admin-0 capital alt", "Admin-0 region capital", "Admin-1 region capital",
		},
		Skip: []string{
			"Cloncurry", "Roebourne", "McMinns Lagoon", "Barcaldine", "Charleville", "Sunshine Coast",
			"Dalby", "Port Douglas", "Atherton", "Innisfail", "Ingham", "Ayr", "Charters Towers",
			"Proserpine", "Emerald", "Yeppoon", "Gladstone", "Biloela", "Hervey Bay", "Maryborough",
			"Kingaroy", "Toowoomba", "Caloundra", "Bowen", "Caboolture", "Bongaree", "Gympie", "Moranbah",
		},
	}
}

// Shapefile attribute columns read for places (Natural Earth naming).
const (
	fieldName    = "NAME"
	fieldCountry = "ADM0NAME"
	fieldPop     = "POP_MAX"
	fieldClass   = "FEATURECLA"
)

// Keep reports whether a place with the given attributes is labelled.
func (f PlaceFilter) Keep(fields map[string]string, at geom.Point) bool {
	name := strings.TrimSpace(fields[fieldName])
	if name == "" || slices.Contains(f.Skip, name) {
		return false
	}
	if f.Country != "" && strings.TrimSpace(fields[fieldCountry]) != f.Country {
		return false
	}
	if at.Y <= f.MinLatitude {
		return false
	}
	if slices.Contains(f.Classes, strings.TrimSpace(fields[fieldClass])) {
		return true
	}
	pop, err := strconv.ParseFloat(strings.TrimSpace(fields[fieldPop]), 64)
	return err == nil && pop > f.MinPopulation
}

// LoadPlaces reads point features from a shapefile and keeps those inside ext
// that pass filter.
func LoadPlaces(path string, ext config.Extent, filter PlaceFilter) ([]Place, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open places %s: %w", path, err)
	}
	defer d.Close()

	var places []Place
	for {
		g, fields, more := d.DecodeRowFields(fieldName, fieldCountry, fieldPop, fieldClass)
		if !more {
			break
		}
		pt, ok := g.(geom.Point)
		if !ok || !ext.Contains(pt.X, pt.Y) {
			continue
		}
		if filter.Keep(fields, pt) {
			places = append(places, Place{Name: strings.TrimSpace(fields[fieldName]), At: pt})
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("read places %s: %w", path, err)
	}
	return places, nil
}

// LoadOverlays loads the optional border and place shapefiles; an empty path
// skips that layer.
func LoadOverlays(borders, places string, ext config.Extent) (Overlays, error) {
	var o Overlays
	var err error
	if borders != "" {
		if o.Borders, err = LoadBorders(borders, ext); err != nil {
			return Overlays{}, err
		}
	}
	if places != "" {
		if o.Places, err = LoadPlaces(places, ext, DefaultPlaceFilter()); err != nil {
			return Overlays{}, err
		}
	}
	return o, nil
}
