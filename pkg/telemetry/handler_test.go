package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, dir
}

func readRecords(t *testing.T, dir string) []LogRecord {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var records []LogRecord
	for _, entry := range entries {
		rows, err := parquet.ReadFile[LogRecord](filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		records = append(records, rows...)
	}
	return records
}

func TestParquetHandler(t *testing.T) {
	t.Run("captures only errors", func(t *testing.T) {
		h, dir := newTestHandler(t)
		log := slog.New(h)

		log.Info("just info")
		log.Warn("just warning")
		log.Error("extraction failed", "window_index", 3)

		require.NoError(t, h.Flush())

		records := readRecords(t, dir)
		require.Len(t, records, 1)
		assert.Equal(t, "extraction failed", records[0].Message)
		assert.Equal(t, "ERROR", records[0].Level)
		assert.Contains(t, records[0].Attributes, "window_index")
		assert.NotEmpty(t, records[0].ID)
	})

	t.Run("job id comes from context", func(t *testing.T) {
		h, dir := newTestHandler(t)
		log := slog.New(h)

		ctx := context.WithValue(context.Background(), types.ContextKeyJobID, "job-42")
		log.ErrorContext(ctx, "window parse failed")

		require.NoError(t, h.Close())

		records := readRecords(t, dir)
		require.Len(t, records, 1)
		assert.Equal(t, "job-42", records[0].JobID)
	})

	t.Run("flush with empty buffer writes nothing", func(t *testing.T) {
		h, dir := newTestHandler(t)
		require.NoError(t, h.Flush())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
