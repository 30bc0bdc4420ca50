// Command greenmap renders a Green Date grid written by greendate as a PNG or
// SVG map with optional state borders and town labels.
package main

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/green-date/internal/adapter/netcdf"
	"github.com/couchcryptid/green-date/internal/adapter/render"
	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/observability"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.ParseMap(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger := observability.NewLogger(cfg.Logging)
	clock := clockwork.NewRealClock()

	start := clock.Now()
	logger.Info("rendering started", "start", start.Format("2006-01-02 15:04:05"))

	grid, err := netcdf.ReadGrid(cfg.GreenDate)
	if err != nil {
		logger.Error("read grid", "error", err)
		return 1
	}
	r, err := render.New(cfg.Map, cfg.Output)
	if err != nil {
		logger.Error("load map style", "error", err)
		return 1
	}
	if err := r.Render(cfg.Output, grid); err != nil {
		logger.Error("render map", "error", err)
		return 1
	}

	logger.Info("rendering finished",
		"path", cfg.Output,
		"borders", len(r.Overlays.Borders),
		"places", len(r.Overlays.Places),
		"end", clock.Now().Format("2006-01-02 15:04:05"),
		"elapsed", clock.Since(start),
	)
	return 0
}
