package render

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
)

const (
	margin     = 12
	titleBand  = 36
	legendBand = 64
	barHeight  = 16
)

// frame maps degrees onto pixels with an equirectangular projection.
type frame struct {
	ext    config.Extent
	scale  float64
	width  int
	height int
	mapW   float64
	mapH   float64
}

func newFrame(ext config.Extent, width int) frame {
	mapW := float64(width - 2*margin)
	scale := mapW / (ext.Right - ext.Left)
	mapH := scale * (ext.Top - ext.Bottom)
	return frame{
		ext:    ext,
		scale:  scale,
		width:  width,
		height: titleBand + int(math.Ceil(mapH)) + legendBand,
		mapW:   mapW,
		mapH:   mapH,
	}
}

func (f frame) project(lon, lat float64) (x, y float64) {
	return margin + (lon-f.ext.Left)*f.scale, titleBand + (f.ext.Top-lat)*f.scale
}

// span is a horizontal run of same-coloured cells within one grid row.
type span struct {
	x, y, w, h float64
	colour     color.RGBA
}

// edges returns cell boundaries halfway between coordinates, extending the
// outer cells by half a spacing.
func edges(axis []float64) []float64 {
	n := len(axis)
	out := make([]float64, n+1)
	switch n {
	case 0:
		return nil
	case 1:
		out[0], out[1] = axis[0]-0.5, axis[0]+0.5
		return out
	}
	for i := 1; i < n; i++ {
		out[i] = (axis[i-1] + axis[i]) / 2
	}
	out[0] = axis[0] - (axis[1]-axis[0])/2
	out[n] = axis[n-1] + (axis[n-1]-axis[n-2])/2
	return out
}

func cellColour(s *Style, r domain.CellResult) color.RGBA {
	switch r.State {
	case domain.Computed:
		return s.Colour(r.DayOfSeason)
	case domain.NotMet:
		return s.notMet
	default:
		return s.noData
	}
}

// spans merges each grid row into runs of equal colour, dropping cells whose
// centre lies outside the frame.
func (f frame) spans(g *domain.AnalysisGrid, s *Style) []span {
	rows, cols := g.Shape()
	latEdges, lonEdges := edges(g.Latitudes), edges(g.Longitudes)
	var out []span
	for r := range rows {
		if lat := g.Latitudes[r]; lat < f.ext.Bottom || lat > f.ext.Top {
			continue
		}
		_, y0 := f.project(0, math.Max(latEdges[r], latEdges[r+1]))
		_, y1 := f.project(0, math.Min(latEdges[r], latEdges[r+1]))
		open := false
		var cur span
		flush := func() {
			if open {
				out = append(out, cur)
				open = false
			}
		}
		for c := range cols {
			if !f.ext.Contains(g.Longitudes[c], g.Latitudes[r]) {
				flush()
				continue
			}
			x0, _ := f.project(math.Min(lonEdges[c], lonEdges[c+1]), 0)
			x1, _ := f.project(math.Max(lonEdges[c], lonEdges[c+1]), 0)
			col := cellColour(s, g.At(r, c))
			if open && col == cur.colour && math.Abs(cur.x+cur.w-x0) < 1e-6 {
				cur.w = x1 - cur.x
				continue
			}
			flush()
			cur = span{x: x0, y: y0, w: x1 - x0, h: y1 - y0, colour: col}
			open = true
		}
		flush()
	}
	return out
}

// Tick is a labelled position on the colour bar.
type Tick struct {
	Day   int
	Label string
}

// Ticks labels the first day of the six months after the season start.
func Ticks(seasonStart time.Month) []Tick {
	cal := domain.SeasonCalendar{StartMonth: seasonStart}
	// Season 2019 holds no 29 February whatever the start month.
	season := cal.Season(2019)
	ticks := make([]Tick, 0, 6)
	for i := 1; i <= 6; i++ {
		d := season.Start.AddDate(0, i, 0)
		ticks = append(ticks, Tick{Day: cal.DayOfSeason(d), Label: fmt.Sprintf("1 %s", d.Format("Jan"))})
	}
	return ticks
}

// barPosition places a day on the colour bar in units of palette boxes.
func (s *Style) barPosition(day int) float64 {
	n := len(s.Levels)
	if day <= s.Levels[0] {
		return 1
	}
	if day >= s.Levels[n-1] {
		return float64(n)
	}
	i := s.Classify(day) - 1
	lo, hi := s.Levels[i], s.Levels[i+1]
	return float64(i+1) + float64(day-lo)/float64(hi-lo)
}

// legend is the colour bar geometry below the map.
type legend struct {
	x, y, boxW float64
	boxes      []color.RGBA
	ticks      []struct {
		x     float64
		label string
	}
}

func (f frame) legend(s *Style, seasonStart time.Month) legend {
	l := legend{
		x:     margin + f.mapW*0.1,
		y:     titleBand + f.mapH + 18,
		boxes: s.palette,
	}
	l.boxW = f.mapW * 0.8 / float64(len(s.palette))
	for _, t := range Ticks(seasonStart) {
		l.ticks = append(l.ticks, struct {
			x     float64
			label string
		}{l.x + s.barPosition(t.Day)*l.boxW, t.Label})
	}
	return l
}

// title picks the explicit title, then the grid's own, then a summary of
// the run parameters.
func title(explicit string, g *domain.AnalysisGrid) string {
	if explicit != "" {
		return explicit
	}
	if g.Meta.Title != "" {
		return g.Meta.Title
	}
	m := g.Meta
	return fmt.Sprintf("Green Date: %gmm in %d days, %d of seasons %d-%d",
		m.Threshold, m.Period, m.MinYears, m.FirstSeason, m.LastSeason)
}
