package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "retailpulse/internal/errors"
)

func openTestArchive(t *testing.T) *ArchiveSink {
	t.Helper()
	archive, err := OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func TestArchiveSink_WriteAndLatest(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := RunInfo{ID: "run-old", Profile: "legacy", StartedAt: base}
	newer := RunInfo{ID: "run-new", Profile: "standard", StartedAt: base.Add(time.Minute)}

	require.NoError(t, archive.Write(ctx, newer, sampleReport()))
	require.NoError(t, archive.Write(ctx, older, sampleReport()))

	latest, err := archive.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-new", latest.ID)
	assert.Equal(t, "standard", latest.Profile)
	assert.True(t, newer.StartedAt.Equal(latest.StartedAt))
	assert.Equal(t, sampleReport(), latest.Report)

	got, err := archive.Get(ctx, "run-old")
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Profile)

	runs, err := archive.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)

	runs, err = archive.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestArchiveSink_RewriteReplacesRun(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	run := RunInfo{ID: "run-1", Profile: "standard", StartedAt: time.Now()}
	require.NoError(t, archive.Write(ctx, run, sampleReport()))

	changed := sampleReport()
	changed.DataQualityMetrics.InvalidOrdersRecords = 9
	require.NoError(t, archive.Write(ctx, run, changed))

	runs, err := archive.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	got, err := archive.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Report.DataQualityMetrics.InvalidOrdersRecords)
}

func TestArchiveSink_EmptyArchive(t *testing.T) {
	archive := openTestArchive(t)

	_, err := archive.Latest(context.Background())
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))

	_, err = archive.Get(context.Background(), "missing")
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))

	runs, err := archive.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
