// Command greendate computes the Green Date of every cell of a gridded daily
// rainfall dataset and writes it as a netCDF grid or a PNG/SVG map.
//
// Usage:
//
//	greendate --daily_rain 2011.daily_rain.nc,2012.daily_rain.nc,... \
//	  --rain_threshold 30 --period 3 -o results/green_date_{threshold}mm.nc
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/green-date/internal/adapter/netcdf"
	"github.com/couchcryptid/green-date/internal/adapter/render"
	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/observability"
	"github.com/couchcryptid/green-date/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := observability.NewLogger(cfg.Logging)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	if err := analyse(ctx, cfg, logger, metrics); err != nil {
		logger.Error("greendate failed", "error", err)
		code = 1
		if config.IsConfigError(err) {
			code = 2
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}
	return code
}

func analyse(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ds, err := netcdf.Open(cfg.DailyRain, cfg.Variable, logger)
	if err != nil {
		return err
	}
	defer ds.Close()
	clock := clockwork.NewRealClock()

	analysis, err := cfg.Analysis.Resolve(ds.Extent())
	if err != nil {
		return err
	}
	seasons := analysis.Seasons()
	logger.Info("analysis configured",
		"first_season", seasons[0].Year,
		"last_season", seasons[len(seasons)-1].Year,
		"period", analysis.Period,
		"threshold_mm", analysis.RainThreshold,
		"statistic", analysis.Statistic,
		"workers", analysis.Workers(),
	)

	from, to := analysis.DataRange()
	loadStart := clock.Now()
	cube, err := ds.Load(ctx, from, to, cfg.Map.Extent)
	if err != nil {
		return fmt.Errorf("load rainfall: %w", err)
	}
	metrics.LoadDuration.Observe(clock.Since(loadStart).Seconds())

	out := cfg.OutputPath()
	sink, err := sinkFor(out, cfg.Map)
	if err != nil {
		return err
	}

	dispatcher := pipeline.NewDispatcher(
		pipeline.NewAnalyzer(analysis.Criteria()),
		analysis.Workers(), analysis.ChunkRows, logger, metrics,
	)
	p := pipeline.New(cube, dispatcher, sink, logger, metrics).WithClock(clock)
	if _, err := p.Run(ctx, analysis.Meta(cfg.Map.Title)); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("analysis interrupted")
		}
		return err
	}
	logger.Info("wrote green date", "path", out)
	return nil
}

func sinkFor(path string, opts config.MapOptions) (pipeline.GridSink, error) {
	kind, err := config.KindOf(path)
	if err != nil {
		return nil, err
	}
	if kind == config.OutputNetCDF {
		return netcdf.GridWriter{Path: path}, nil
	}
	return render.New(opts, path)
}
