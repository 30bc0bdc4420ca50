package render

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
)

// Renderer draws grids with a fixed style, extent and overlays. It is also a
// pipeline sink writing to Path.
type Renderer struct {
	Style    *Style
	Overlays Overlays
	Extent   config.Extent
	Title    string
	Path     string
}

// New loads the style and overlay shapefiles named by opts.
func New(opts config.MapOptions, path string) (*Renderer, error) {
	style, err := LoadStyle(opts.Style)
	if err != nil {
		return nil, err
	}
	overlays, err := LoadOverlays(opts.Borders, opts.Places, opts.Extent)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		Style:    style,
		Overlays: overlays,
		Extent:   opts.Extent,
		Title:    opts.Title,
		Path:     path,
	}, nil
}

// Render writes g to path as PNG or SVG depending on the extension.
func (r *Renderer) Render(path string, g *domain.AnalysisGrid) error {
	kind, err := config.KindOf(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	switch kind {
	case config.OutputPNG:
		if err := r.drawPNG(path, g); err != nil {
			return fmt.Errorf("render png %s: %w", path, err)
		}
		return nil
	case config.OutputSVG:
		return r.writeSVG(path, g)
	default:
		return fmt.Errorf("render %s: not an image path", path)
	}
}

func (r *Renderer) writeSVG(path string, g *domain.AnalysisGrid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("render svg %s: %w", path, cerr)
		}
	}()
	w := bufio.NewWriter(f)
	r.drawSVG(w, g)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("render svg %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) WriteGrid(_ context.Context, g *domain.AnalysisGrid) error {
	return r.Render(r.Path, g)
}
