package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "retailpulse/internal/errors"
	"retailpulse/internal/pipeline"
	"retailpulse/internal/report"
	"retailpulse/pkg/contracts/domain"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunState, error)
}

// RunLister lists archived runs
type RunLister interface {
	List(ctx context.Context, limit int) ([]report.RunInfo, error)
}

// Snapshot is the latest successful run as served to clients
type Snapshot struct {
	RunID       string         `json:"run_id"`
	Profile     string         `json:"profile"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMS  int64          `json:"duration_ms"`
	Report      *domain.Report `json:"report"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// ReportService runs the pipeline and serves its latest report
type ReportService struct {
	runner  Runner
	sink    report.Sink
	archive RunLister
	logger  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	latest  *Snapshot
	lastErr error
}

// NewReportService creates a report service. sink and archive may be nil.
func NewReportService(runner Runner, sink report.Sink, archive RunLister, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		runner:  runner,
		sink:    sink,
		archive: archive,
		logger:  logger.With(slog.String("service", "report")),
	}
}

// Refresh runs the pipeline and publishes the new report. Concurrent callers
// share a single run and all receive its result.
func (s *ReportService) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.DebugContext(ctx, "Joined in-flight refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *ReportService) refresh(ctx context.Context) (*Snapshot, error) {
	state, err := s.runner.Run(ctx)
	if err != nil {
		s.setError(err)
		return nil, err
	}

	snapshot := &Snapshot{
		RunID:       state.ID,
		Profile:     state.Profile.Name,
		StartedAt:   state.StartTime,
		DurationMS:  state.Duration().Milliseconds(),
		Report:      state.Report,
		RefreshedAt: time.Now(),
	}

	if s.sink != nil {
		run := report.RunInfo{ID: state.ID, Profile: state.Profile.Name, StartedAt: state.StartTime}
		if err := s.sink.Write(ctx, run, state.Report); err != nil {
			s.setError(err)
			return nil, fmt.Errorf("publish report: %w", err)
		}
	}

	s.mu.Lock()
	s.latest = snapshot
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Report refreshed",
		slog.String("run_id", snapshot.RunID),
		slog.Int64("duration_ms", snapshot.DurationMS))
	return snapshot, nil
}

func (s *ReportService) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Latest returns the most recent successful snapshot
func (s *ReportService) Latest() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

// LastError returns the error of the most recent failed refresh, if any
func (s *ReportService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Lookup resolves a key path against the latest report
func (s *ReportService) Lookup(path string) (any, error) {
	snapshot, err := s.Latest()
	if err != nil {
		return nil, err
	}
	v, err := report.Lookup(snapshot.Report, path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("report path %q", path)).WithContext("reason", err.Error())
	}
	return v, nil
}

// Runs lists archived runs, newest first
func (s *ReportService) Runs(ctx context.Context, limit int) ([]report.RunInfo, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	runs, err := s.archive.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []report.RunInfo{}
	}
	return runs, nil
}
