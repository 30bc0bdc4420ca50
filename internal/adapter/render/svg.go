package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/couchcryptid/green-date/internal/domain"
)

func px(v float64) int { return int(math.Round(v)) }

func (r *Renderer) drawSVG(w io.Writer, g *domain.AnalysisGrid) {
	f := newFrame(r.Extent, r.Style.Width)
	s := r.Style

	canvas := svg.New(w)
	canvas.Start(f.width, f.height)
	canvas.Rect(0, 0, f.width, f.height, fmt.Sprintf("fill:%s", css(s.back)))

	canvas.Gid("cells")
	for _, sp := range f.spans(g, s) {
		x0, y0 := px(sp.x), px(sp.y)
		canvas.Rect(x0, y0, max(px(sp.x+sp.w)-x0, 1), max(px(sp.y+sp.h)-y0, 1),
			fmt.Sprintf("fill:%s", css(sp.colour)))
	}
	canvas.Gend()

	canvas.Gid("borders")
	for _, line := range r.Overlays.Borders {
		xs, ys := make([]int, len(line)), make([]int, len(line))
		for i, p := range line {
			x, y := f.project(p.X, p.Y)
			xs[i], ys[i] = px(x), px(y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:0.8", css(s.border)))
	}
	canvas.Gend()

	canvas.Gid("places")
	for _, p := range r.Overlays.Places {
		x, y := f.project(p.At.X, p.At.Y)
		canvas.Circle(px(x), px(y), 3, fmt.Sprintf("fill:%s;stroke:%s", css(s.back), css(s.border)))
		canvas.Text(px(x+0.3*f.scale), px(y)+4, p.Name,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(s.text)))
	}
	canvas.Gend()

	canvas.Rect(margin, titleBand, px(f.mapW), px(f.mapH),
		fmt.Sprintf("fill:none;stroke:%s", css(s.border)))
	canvas.Text(f.width/2, titleBand/2+5, title(r.Title, g),
		fmt.Sprintf("fill:%s;font-size:15px;font-family:sans-serif;text-anchor:middle", css(s.text)))

	l := f.legend(s, g.Meta.SeasonStart)
	for i, c := range l.boxes {
		x0 := px(l.x + float64(i)*l.boxW)
		canvas.Rect(x0, px(l.y), px(l.x+float64(i+1)*l.boxW)-x0, barHeight, fmt.Sprintf("fill:%s", css(c)))
	}
	for _, t := range l.ticks {
		canvas.Line(px(t.x), px(l.y)+barHeight, px(t.x), px(l.y)+barHeight+4,
			fmt.Sprintf("stroke:%s", css(s.text)))
		canvas.Text(px(t.x), px(l.y)+barHeight+16, t.label,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", css(s.text)))
	}
	canvas.End()
}
