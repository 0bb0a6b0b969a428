package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/dataprocessing"
	apperrors "retailpulse/internal/errors"
	"retailpulse/internal/pipeline"
	"retailpulse/internal/report"
	"retailpulse/internal/shared/testutil"
	"retailpulse/internal/source"
	"retailpulse/pkg/contracts/domain"
)

func sampleRunner(t *testing.T) *pipeline.Runner {
	t.Helper()
	r, err := pipeline.NewRunner(source.NewMemoryLoader(testutil.SampleTables()), dataprocessing.StandardProfile(), nil)
	require.NoError(t, err)
	return r
}

type recordingSink struct {
	mu   sync.Mutex
	runs []report.RunInfo
	err  error
}

func (s *recordingSink) Write(_ context.Context, run report.RunInfo, _ *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return s.err
}

type blockingRunner struct {
	calls   atomic.Int32
	release chan struct{}
	inner   Runner
}

func (r *blockingRunner) Run(ctx context.Context) (*pipeline.RunState, error) {
	r.calls.Add(1)
	<-r.release
	return r.inner.Run(ctx)
}

type failingRunner struct{ err error }

func (r failingRunner) Run(context.Context) (*pipeline.RunState, error) {
	return nil, r.err
}

func TestReportService_Refresh(t *testing.T) {
	sink := &recordingSink{}
	svc := NewReportService(sampleRunner(t), sink, nil, nil)

	_, err := svc.Latest()
	assert.ErrorIs(t, err, ErrNoReport)

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.RunID)
	assert.Equal(t, "standard", snapshot.Profile)
	require.NotNil(t, snapshot.Report)

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Same(t, snapshot, latest)

	require.Len(t, sink.runs, 1)
	assert.Equal(t, snapshot.RunID, sink.runs[0].ID)
}

func TestReportService_ConcurrentRefreshSharesOneRun(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), inner: sampleRunner(t)}
	svc := NewReportService(runner, nil, nil, nil)

	const callers = 5
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := svc.Refresh(context.Background())
			if err == nil {
				ids[i] = snapshot.RunID
			}
		}(i)
	}

	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestReportService_FailedRefreshKeepsPreviousReport(t *testing.T) {
	svc := NewReportService(sampleRunner(t), nil, nil, nil)
	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	boom := apperrors.NewDatasetLoadError("orders", errors.New("bucket offline"))
	svc.runner = failingRunner{err: boom}

	_, err = svc.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, boom, svc.LastError())

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Equal(t, first.RunID, latest.RunID)
}

func TestReportService_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: apperrors.NewStorageError("disk full", nil)}
	svc := NewReportService(sampleRunner(t), sink, nil, nil)

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

	_, err = svc.Latest()
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestReportService_Lookup(t *testing.T) {
	svc := NewReportService(sampleRunner(t), nil, nil, nil)

	_, err := svc.Lookup("valid_names[0].name")
	assert.ErrorIs(t, err, ErrNoReport)

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	name, err := svc.Lookup("business_metrics.top_5_customers_by_total_spend[0].name")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = svc.Lookup("business_metrics.nope")
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
}

func TestReportService_Runs(t *testing.T) {
	svc := NewReportService(sampleRunner(t), nil, nil, nil)
	_, err := svc.Runs(context.Background(), 10)
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	archive, err := report.OpenArchive(t.TempDir() + "/runs.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	svc = NewReportService(sampleRunner(t), archive, archive, nil)
	runs, err := svc.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	runs, err = svc.Runs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, snapshot.RunID, runs[0].ID)
}

func TestHealthService(t *testing.T) {
	svc := NewReportService(sampleRunner(t), nil, nil, nil)
	health := NewHealthService("1.0.0", svc)

	status := health.HealthCheck(context.Background())
	assert.Equal(t, "starting", status.Status)
	assert.Equal(t, "1.0.0", status.Version)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.HealthCheck(context.Background()).Status)

	svc.runner = failingRunner{err: errors.New("boom")}
	_, _ = svc.Refresh(context.Background())
	status = health.HealthCheck(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, ServiceHealth{Status: "stale", Message: "boom"}, status.Services["report"])
}
