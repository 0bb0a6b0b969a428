package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// timeLayout is fixed width so started_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StoredRun is one archived report
type StoredRun struct {
	RunInfo
	Report *domain.Report
}

// ArchiveSink keeps every report in a SQLite database, one row per run
type ArchiveSink struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the archive database at path
func OpenArchive(path string) (*ArchiveSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open report archive", err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewArchiveSink(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewArchiveSink wraps an open database and creates the runs table
func NewArchiveSink(db *sql.DB) (*ArchiveSink, error) {
	s := &ArchiveSink{db: db}
	if err := s.migrate(); err != nil {
		return nil, errors.NewStorageError("failed to migrate report archive", err)
	}
	return s, nil
}

func (s *ArchiveSink) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id     TEXT PRIMARY KEY,
		profile    TEXT NOT NULL,
		started_at TEXT NOT NULL,
		report     TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close releases the database
func (s *ArchiveSink) Close() error {
	return s.db.Close()
}

// Write stores the report under the run id. Writing the same run twice replaces it.
func (s *ArchiveSink) Write(ctx context.Context, run RunInfo, r *domain.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO runs (run_id, profile, started_at, report) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.Profile, run.StartedAt.UTC().Format(timeLayout), string(data))
	if err != nil {
		return errors.NewStorageError("failed to archive report", err).WithContext("run_id", run.ID)
	}
	return nil
}

// Get returns one archived run
func (s *ArchiveSink) Get(ctx context.Context, runID string) (*StoredRun, error) {
	query := `SELECT run_id, profile, started_at, report FROM runs WHERE run_id = ?`
	return s.queryOne(ctx, query, runID)
}

// Latest returns the most recently started run
func (s *ArchiveSink) Latest(ctx context.Context) (*StoredRun, error) {
	query := `SELECT run_id, profile, started_at, report FROM runs ORDER BY started_at DESC LIMIT 1`
	return s.queryOne(ctx, query)
}

// List returns run metadata, newest first, without the report bodies
func (s *ArchiveSink) List(ctx context.Context, limit int) ([]RunInfo, error) {
	query := `SELECT run_id, profile, started_at FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewStorageError("failed to list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var started string
		if err := rows.Scan(&info.ID, &info.Profile, &started); err != nil {
			return nil, err
		}
		info.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at of run %s: %w", info.ID, err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

func (s *ArchiveSink) queryOne(ctx context.Context, query string, args ...any) (*StoredRun, error) {
	var run StoredRun
	var started, body string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.Profile, &started, &body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("archived run")
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to read report archive", err)
	}

	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("parse started_at of run %s: %w", run.ID, err)
	}
	run.Report, err = Unmarshal([]byte(body))
	if err != nil {
		return nil, err
	}
	return &run, nil
}
