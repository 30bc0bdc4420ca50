package render

import (
	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/couchcryptid/green-date/internal/domain"
)

func (r *Renderer) drawPNG(path string, g *domain.AnalysisGrid) error {
	f := newFrame(r.Extent, r.Style.Width)
	s := r.Style

	dc := gg.NewContext(f.width, f.height)
	dc.SetColor(s.back)
	dc.Clear()

	for _, sp := range f.spans(g, s) {
		dc.SetColor(sp.colour)
		dc.DrawRectangle(sp.x, sp.y, sp.w, sp.h)
		dc.Fill()
	}

	dc.SetColor(s.border)
	dc.SetLineWidth(0.8)
	for _, line := range r.Overlays.Borders {
		dc.NewSubPath()
		for i, p := range line {
			x, y := f.project(p.X, p.Y)
			if i == 0 {
				dc.MoveTo(x, y)
				continue
			}
			dc.LineTo(x, y)
		}
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	for _, p := range r.Overlays.Places {
		x, y := f.project(p.At.X, p.At.Y)
		dc.DrawCircle(x, y, 3)
		dc.SetColor(s.back)
		dc.FillPreserve()
		dc.SetColor(s.border)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.SetColor(s.text)
		dc.DrawStringAnchored(p.Name, x+0.3*f.scale, y, 0, 0.35)
	}

	// Frame around the map area.
	dc.SetColor(s.border)
	dc.SetLineWidth(1)
	dc.DrawRectangle(margin, titleBand, f.mapW, f.mapH)
	dc.Stroke()

	dc.SetColor(s.text)
	dc.DrawStringAnchored(title(r.Title, g), float64(f.width)/2, titleBand/2, 0.5, 0.5)

	l := f.legend(s, g.Meta.SeasonStart)
	for i, c := range l.boxes {
		dc.SetColor(c)
		dc.DrawRectangle(l.x+float64(i)*l.boxW, l.y, l.boxW, barHeight)
		dc.Fill()
	}
	dc.SetColor(s.border)
	dc.DrawRectangle(l.x, l.y, l.boxW*float64(len(l.boxes)), barHeight)
	dc.Stroke()
	dc.SetColor(s.text)
	for _, t := range l.ticks {
		dc.DrawLine(t.x, l.y+barHeight, t.x, l.y+barHeight+4)
		dc.Stroke()
		dc.DrawStringAnchored(t.label, t.x, l.y+barHeight+14, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}
