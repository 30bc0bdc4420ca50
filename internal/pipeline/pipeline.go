package pipeline

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/green-date/internal/domain"
	"github.com/couchcryptid/green-date/internal/observability"
)

// Source supplies the rainfall series of each cell. Implementations must be
// safe for concurrent reads.
type Source interface {
	Shape() (rows, cols int)
	Coordinates() (latitudes, longitudes []float64)
	Series(row, col int) (domain.RainfallSeries, error)
}

// CellAnalyzer turns one cell's series into its result. It must be safe for
// concurrent use and must not retain the series.
type CellAnalyzer interface {
	Analyze(series domain.RainfallSeries) domain.CellResult
}

// GridSink receives the finished grid, e.g. a netCDF writer or a map renderer.
type GridSink interface {
	WriteGrid(ctx context.Context, grid *domain.AnalysisGrid) error
}

// Pipeline runs the source through the dispatcher into the sink.
type Pipeline struct {
	source     Source
	dispatcher *Dispatcher
	sink       GridSink
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// New creates a Pipeline with the given stages and observability.
func New(src Source, d *Dispatcher, sink GridSink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     src,
		dispatcher: d,
		sink:       sink,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used to time the run and its chunks.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	p.dispatcher.WithClock(c)
	return p
}

// Run analyses the whole grid and hands it to the sink. A cancelled or failed
// dispatch never reaches the sink.
func (p *Pipeline) Run(ctx context.Context, meta domain.GridMeta) (*domain.AnalysisGrid, error) {
	start := p.clock.Now()
	p.logger.Info("analysis started", "start", start.Format("2006-01-02 15:04:05"))

	grid, err := p.dispatcher.Dispatch(ctx, p.source, meta)
	if err != nil {
		p.logger.Error("analysis failed", "error", err)
		return nil, err
	}

	elapsed := p.clock.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	counts := grid.Counts()
	p.logger.Info("analysis finished",
		"end", p.clock.Now().Format("2006-01-02 15:04:05"),
		"elapsed", elapsed,
		"computed", counts.Computed,
		"not_met", counts.NotMet,
		"errors", counts.Error,
	)

	if err := p.sink.WriteGrid(ctx, grid); err != nil {
		return nil, err
	}
	return grid, nil
}
