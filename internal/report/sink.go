package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"retailpulse/internal/errors"
	"retailpulse/internal/files"
	"retailpulse/pkg/contracts/domain"
)

// RunInfo identifies the run that produced a report
type RunInfo struct {
	ID        string
	Profile   string
	StartedAt time.Time
}

// Sink receives a finished report
type Sink interface {
	Write(ctx context.Context, run RunInfo, r *domain.Report) error
}

// FileSink writes the report as indented JSON, replacing the file atomically
type FileSink struct {
	path    string
	manager *files.Manager
	logger  *slog.Logger
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{path: path, manager: files.NewManager(logger), logger: logger}
}

// Path returns the destination file
func (s *FileSink) Path() string {
	return s.path
}

// Write encodes and stores the report
func (s *FileSink) Write(ctx context.Context, run RunInfo, r *domain.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := s.manager.WriteFile(s.path, data); err != nil {
		return errors.NewStorageError("failed to write report", err).WithContext("path", s.path)
	}
	s.logger.InfoContext(ctx, "Report written",
		slog.String("path", s.path),
		slog.String("run_id", run.ID),
		slog.Int("size_bytes", len(data)))
	return nil
}

// WriterSink writes the report JSON to a stream such as stdout
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink over w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write encodes the report to the stream
func (s *WriterSink) Write(_ context.Context, _ RunInfo, r *domain.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return errors.NewStorageError("failed to write report stream", err)
	}
	return nil
}

// MultiSink fans a report out to several sinks in order and stops at the first failure
type MultiSink []Sink

// Write delivers the report to every sink
func (m MultiSink) Write(ctx context.Context, run RunInfo, r *domain.Report) error {
	for i, s := range m {
		if err := s.Write(ctx, run, r); err != nil {
			return fmt.Errorf("sink %d (%T): %w", i, s, err)
		}
	}
	return nil
}
