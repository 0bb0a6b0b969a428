package pipeline

import (
	"context"
	"sync"
	"time"
)

// Stage is one unit of work in a run
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Dependencies returns the IDs of stages that must complete first
	Dependencies() []string

	// Execute runs the stage against the run state
	Execute(ctx context.Context, state *RunState) error
}

// StageStatus represents the current status of a stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// StageState represents the runtime state of a stage
type StageState struct {
	mu        sync.RWMutex
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewStageState creates a pending stage state
func NewStageState(id, name string) *StageState {
	return &StageState{
		ID:     id,
		Name:   name,
		Status: StageStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StageStatusActive
}

// Complete marks the stage as completed and sets the end time
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusCompleted
}

// Fail marks the stage as failed with the given error
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// GetStatus returns the current status
func (s *StageState) GetStatus() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns how long the stage ran, or 0 if it never started
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime == nil {
		return time.Since(*s.StartTime)
	}
	return s.EndTime.Sub(*s.StartTime)
}

// funcStage adapts a function into a Stage
type funcStage struct {
	id   string
	name string
	deps []string
	run  func(ctx context.Context, state *RunState) error
}

// NewStage builds a stage from a function
func NewStage(id, name string, deps []string, run func(ctx context.Context, state *RunState) error) Stage {
	return &funcStage{id: id, name: name, deps: deps, run: run}
}

func (s *funcStage) ID() string             { return s.id }
func (s *funcStage) Name() string           { return s.name }
func (s *funcStage) Dependencies() []string { return s.deps }

func (s *funcStage) Execute(ctx context.Context, state *RunState) error {
	return s.run(ctx, state)
}
