package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Equal(t, 4, handler.Count())
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "cleaner")).Info("cleaned dataset", slog.String("entity", "orders"))

		require.Equal(t, 1, handler.Count())
		assert.True(t, handler.ContainsAttr("component", "cleaner"))
		assert.True(t, handler.ContainsAttr("entity", "orders"))
		assert.Len(t, handler.FindByMessage("cleaned"), 1)
	})
}

func TestSampleTables(t *testing.T) {
	tables := SampleTables()
	require.Len(t, tables, len(domain.Entities()))

	for e, table := range tables {
		assert.Equal(t, e, table.Entity)
		assert.Empty(t, table.MissingColumns(), "sample %s has every required column", e)
		for i, row := range table.Rows {
			assert.Len(t, row, len(table.Header), "%s row %d", e, i)
		}
	}
}

func TestWriteSampleDatasets(t *testing.T) {
	dir := WriteSampleDatasets(t, t.TempDir())

	for _, e := range domain.Entities() {
		assert.FileExists(t, dir+"/"+e.FileName())
	}
}
