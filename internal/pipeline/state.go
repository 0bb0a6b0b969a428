package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"retailpulse/internal/dataprocessing"
	apperrors "retailpulse/internal/errors"
	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// recordValidator checks the validate tags of cleaned records
var recordValidator = validation.NewStructValidator()

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RawRecords holds the typed raw records of every dataset
type RawRecords struct {
	Customers []domain.CustomerRecord
	Products  []domain.ProductRecord
	Orders    []domain.OrderRecord
	Shipments []domain.ShipmentRecord
	Refunds   []domain.RefundRecord
}

// Count returns the raw row count of an entity
func (r RawRecords) Count(e domain.Entity) int {
	switch e {
	case domain.EntityCustomers:
		return len(r.Customers)
	case domain.EntityProducts:
		return len(r.Products)
	case domain.EntityOrders:
		return len(r.Orders)
	case domain.EntityShipments:
		return len(r.Shipments)
	case domain.EntityRefunds:
		return len(r.Refunds)
	default:
		return 0
	}
}

// RunState is everything one run produced. A fresh state is created per run
// and nothing outlives it.
type RunState struct {
	mu sync.RWMutex

	ID        string
	Profile   dataprocessing.Profile
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	Tables  map[domain.Entity]*domain.Table
	Raw     RawRecords
	Cleaned dataprocessing.CleanedData

	Quality  domain.DataQualityMetrics
	Business domain.BusinessMetrics
	Report   *domain.Report

	stages map[string]*StageState
	order  []string
}

// NewRunState creates a pending run state
func NewRunState(id string, profile dataprocessing.Profile) *RunState {
	return &RunState{
		ID:        id,
		Profile:   profile,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Tables:    make(map[domain.Entity]*domain.Table),
		stages:    make(map[string]*StageState),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err
}

// Duration returns the run duration so far
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// AddStage tracks a stage's state, keeping insertion order
func (s *RunState) AddStage(state *StageState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[state.ID]; !ok {
		s.order = append(s.order, state.ID)
	}
	s.stages[state.ID] = state
}

// Stage returns the state of one stage, or nil
func (s *RunState) Stage(id string) *StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stages[id]
}

// Stages returns stage states in execution order
func (s *RunState) Stages() []*StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*StageState, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.stages[id])
	}
	return out
}

// StageCompleted reports whether a stage finished successfully
func (s *RunState) StageCompleted(id string) bool {
	st := s.Stage(id)
	return st != nil && st.GetStatus() == StageStatusCompleted
}

// RawCounts returns the raw row count of every entity
func (s *RunState) RawCounts() map[domain.Entity]int {
	counts := make(map[domain.Entity]int, len(domain.Entities()))
	for _, e := range domain.Entities() {
		counts[e] = s.Raw.Count(e)
	}
	return counts
}

// Verify checks the invariants every completed run must satisfy: unique
// cleaned ids, cleaned counts bounded by raw counts, exact quality deltas,
// refunds that reference cleaned orders and products, and the validate tags
// of cleaned customers, products and orders.
func (s *RunState) Verify() error {
	for _, e := range domain.Entities() {
		raw, cleaned := s.Raw.Count(e), s.Cleaned.Count(e)
		if cleaned > raw {
			return fmt.Errorf("%s: %d cleaned rows exceed %d raw rows", e, cleaned, raw)
		}
		if got := s.Quality.Get(e); got != raw-cleaned {
			return fmt.Errorf("%s: quality count %d, want %d", e, got, raw-cleaned)
		}
	}

	if err := uniqueIDs(domain.EntityCustomers, s.Cleaned.Customers, func(c domain.Customer) string { return c.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(domain.EntityProducts, s.Cleaned.Products, func(p domain.Product) string { return p.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(domain.EntityOrders, s.Cleaned.Orders, func(o domain.Order) string { return o.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(domain.EntityShipments, s.Cleaned.Shipments, func(sh domain.Shipment) string { return sh.ID }); err != nil {
		return err
	}
	if s.Profile.Dedupe[domain.EntityRefunds] {
		if err := uniqueIDs(domain.EntityRefunds, s.Cleaned.Refunds, func(r domain.Refund) string { return r.ID }); err != nil {
			return err
		}
	}

	refs := dataprocessing.NewReferenceIndex(s.Cleaned.Orders, s.Cleaned.Products)
	for _, r := range s.Cleaned.Refunds {
		if !refs.HasOrder(r.OrderID) {
			return fmt.Errorf("refund %s references unknown order %s", r.ID, r.OrderID)
		}
		if !refs.HasProduct(r.ProductID) {
			return fmt.Errorf("refund %s references unknown product %s", r.ID, r.ProductID)
		}
	}

	if err := validateRecords(domain.EntityCustomers, s.Cleaned.Customers); err != nil {
		return err
	}
	if err := validateRecords(domain.EntityProducts, s.Cleaned.Products); err != nil {
		return err
	}
	return validateRecords(domain.EntityOrders, s.Cleaned.Orders)
}

// validateRecords runs the struct validator over every cleaned row
func validateRecords[T any](entity domain.Entity, records []T) error {
	for i := range records {
		if err := recordValidator.Struct(records[i]); err != nil {
			var fields validator.ValidationErrors
			if errors.As(err, &fields) && len(fields) > 0 {
				return apperrors.NewAppValidationError(fmt.Sprintf("%s row %d: field %s failed %q",
					entity, i, fields[0].Field(), fields[0].Tag()))
			}
			return apperrors.NewAppValidationError(fmt.Sprintf("%s row %d: %v", entity, i, err))
		}
	}
	return nil
}

func uniqueIDs[T any](entity domain.Entity, rows []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := id(row)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s: duplicate id %s", entity, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
