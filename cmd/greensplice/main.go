// Command greensplice combines Green Date grids computed at several rain
// thresholds into one grid, picking each cell's threshold from its soil clay
// content.
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/green-date/internal/adapter/netcdf"
	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/domain"
	"github.com/couchcryptid/green-date/internal/observability"
	"github.com/couchcryptid/green-date/internal/splice"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.ParseSplice(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger := observability.NewLogger(cfg.Logging)
	clock := clockwork.NewRealClock()
	start := clock.Now()

	rules, err := splice.LoadRules(cfg.Rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	grids := make(map[float64]*domain.AnalysisGrid)
	for _, thr := range rules.Thresholds() {
		path := config.ExpandThreshold(cfg.GreenDateFiles, thr)
		g, err := netcdf.ReadGrid(path)
		if err != nil {
			logger.Error("read green date grid", "threshold_mm", thr, "error", err)
			return 1
		}
		grids[thr] = g
	}

	clay, err := netcdf.ReadField(cfg.ClayContent, cfg.ClayVariable)
	if err != nil {
		logger.Error("read clay content", "error", err)
		return 1
	}
	base := grids[rules.Thresholds()[0]]
	clay = clay.Regrid(base.Latitudes, base.Longitudes)

	res, err := splice.Splice(rules, clay, grids)
	if err != nil {
		logger.Error("splice", "error", err)
		return 1
	}
	if err := netcdf.WriteGrid(cfg.Output, res.Grid); err != nil {
		logger.Error("write spliced grid", "error", err)
		return 1
	}

	thresholds := make([]float64, 0, len(res.Usage))
	for thr := range res.Usage {
		thresholds = append(thresholds, thr)
	}
	slices.Sort(thresholds)
	for _, thr := range thresholds {
		logger.Info("cells from threshold", "threshold_mm", thr, "cells", res.Usage[thr])
	}
	counts := res.Grid.Counts()
	logger.Info("splice finished",
		"path", cfg.Output,
		"computed", counts.Computed,
		"not_met", counts.NotMet,
		"errors", counts.Error,
		"elapsed", clock.Since(start),
	)
	return 0
}
