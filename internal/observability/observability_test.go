package observability_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/green-date/internal/config"
	"github.com/couchcryptid/green-date/internal/observability"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			prev := slog.Default()
			t.Cleanup(func() { slog.SetDefault(prev) })

			logger := observability.NewLogger(config.Logging{LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, logger)
			assert.Same(t, logger, slog.Default())
			assert.True(t, logger.Handler().Enabled(t.Context(), tt.want))
			assert.False(t, logger.Handler().Enabled(t.Context(), tt.want-1))
		})
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := observability.NewMetricsForTesting()
	m.CellsProcessed.WithLabelValues("computed").Add(3)
	m.ChunksTotal.Inc()

	assert.InDelta(t, 3, testutil.ToFloat64(m.CellsProcessed.WithLabelValues("computed")), 0)

	path := filepath.Join(t.TempDir(), "green_date.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `green_date_cells_processed_total{state="computed"} 3`)
	assert.Contains(t, string(data), "green_date_chunks_total 1")
}

func TestNewMetrics_Independent(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.ChunkFailures.Inc()
	assert.InDelta(t, 0, testutil.ToFloat64(b.ChunkFailures), 0)

	n, err := testutil.GatherAndCount(a.Gatherer(), "green_date_chunk_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
