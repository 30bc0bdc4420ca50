package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/green-date/internal/domain"
	"github.com/couchcryptid/green-date/internal/observability"
)

var (
	// ErrWorkerFailure marks the cells of a unit of work whose worker panicked.
	ErrWorkerFailure = errors.New("worker failure")

	// ErrAllWorkersFailed is returned when no unit of work completed.
	ErrAllWorkersFailed = errors.New("all workers failed")
)

// chunk is one unit of work: latitude rows [first, last).
type chunk struct {
	first int
	last  int
}

type cell struct {
	row    int
	col    int
	result domain.CellResult
}

// batch is the result of one chunk sent back to the collector.
type batch struct {
	chunk chunk
	cells []cell
	err   error
}

// partition cuts rows into chunks of at most size rows.
func partition(rows, size int) []chunk {
	size = max(size, 1)
	chunks := make([]chunk, 0, (rows+size-1)/size)
	for first := 0; first < rows; first += size {
		chunks = append(chunks, chunk{first: first, last: min(first+size, rows)})
	}
	return chunks
}

// Dispatcher fans row chunks out to a fixed pool of workers and assembles
// their results into an AnalysisGrid. Only the collector writes the grid.
type Dispatcher struct {
	analyzer  CellAnalyzer
	workers   int
	chunkRows int
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// NewDispatcher creates a Dispatcher with the given pool size and rows per chunk.
func NewDispatcher(analyzer CellAnalyzer, workers, chunkRows int, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		analyzer:  analyzer,
		workers:   max(workers, 1),
		chunkRows: max(chunkRows, 1),
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used to time chunks.
func (d *Dispatcher) WithClock(c clockwork.Clock) *Dispatcher {
	d.clock = c
	return d
}

// Dispatch analyses every cell of src. Per-cell and per-chunk failures become
// Error cells; the run fails only when every chunk failed or ctx is cancelled,
// in which case no grid is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, src Source, meta domain.GridMeta) (*domain.AnalysisGrid, error) {
	rows, cols := src.Shape()
	latitudes, longitudes := src.Coordinates()
	builder := domain.NewGridBuilder(meta, latitudes, longitudes)

	chunks := partition(rows, d.chunkRows)
	if len(chunks) == 0 || cols == 0 {
		return builder.Build(), nil
	}
	workers := min(d.workers, len(chunks))
	d.logger.Info("dispatching grid",
		"rows", rows, "cols", cols, "chunks", len(chunks), "workers", workers)

	tasks := make(chan chunk)
	results := make(chan batch, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(tasks)
		for _, c := range chunks {
			select {
			case tasks <- c:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			for c := range tasks {
				if err := gctx.Err(); err != nil {
					return err
				}
				d.metrics.WorkersActive.Inc()
				b := d.process(src, c, cols)
				d.metrics.WorkersActive.Dec()
				select {
				case results <- b:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	var runErr error
	done := make(chan struct{})
	go func() {
		runErr = g.Wait()
		close(results)
		close(done)
	}()

	failed := 0
	for b := range results {
		d.metrics.ChunksTotal.Inc()
		if b.err != nil {
			failed++
			d.metrics.ChunkFailures.Inc()
			d.logger.Warn("chunk failed, marking cells as errors",
				"error", b.err, "first_row", b.chunk.first, "last_row", b.chunk.last-1)
			failure := domain.ErrorResult(b.err)
			for row := b.chunk.first; row < b.chunk.last; row++ {
				for col := range cols {
					d.collect(builder, row, col, failure)
				}
			}
			continue
		}
		for _, c := range b.cells {
			d.collect(builder, c.row, c.col, c.result)
		}
	}
	<-done

	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed == len(chunks) {
		return nil, fmt.Errorf("%w: %d of %d chunks", ErrAllWorkersFailed, failed, len(chunks))
	}
	return builder.Build(), nil
}

func (d *Dispatcher) collect(builder *domain.GridBuilder, row, col int, r domain.CellResult) {
	if err := builder.Set(row, col, r); err != nil {
		d.logger.Error("dropping result", "error", err)
		return
	}
	d.metrics.CellsProcessed.WithLabelValues(r.State.String()).Inc()
}

// process runs the per-cell pipeline over one chunk. A panic anywhere in the
// chunk is recovered and reported as ErrWorkerFailure for the whole chunk.
func (d *Dispatcher) process(src Source, c chunk, cols int) (b batch) {
	start := d.clock.Now()
	b.chunk = c
	defer func() {
		if r := recover(); r != nil {
			b.cells = nil
			b.err = fmt.Errorf("%w: rows %d-%d: %v", ErrWorkerFailure, c.first, c.last-1, r)
		}
		d.metrics.ChunkDuration.Observe(d.clock.Since(start).Seconds())
	}()

	b.cells = make([]cell, 0, (c.last-c.first)*cols)
	for row := c.first; row < c.last; row++ {
		for col := range cols {
			var result domain.CellResult
			series, err := src.Series(row, col)
			if err != nil {
				result = domain.ErrorResult(fmt.Errorf("extract series: %w", err))
			} else {
				result = d.analyzer.Analyze(series)
			}
			b.cells = append(b.cells, cell{row: row, col: col, result: result})
		}
	}
	return b
}
