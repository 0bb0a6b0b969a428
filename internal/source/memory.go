package source

import (
	"context"
	"fmt"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// MemoryLoader serves tables held in memory
type MemoryLoader struct {
	tables map[domain.Entity]*domain.Table
}

// NewMemoryLoader creates a loader over tables
func NewMemoryLoader(tables map[domain.Entity]*domain.Table) *MemoryLoader {
	return &MemoryLoader{tables: tables}
}

// Load returns a copy of the entity's table so callers cannot alter the source
func (l *MemoryLoader) Load(ctx context.Context, entity domain.Entity) (*domain.Table, error) {
	t, ok := l.tables[entity]
	if !ok || t == nil {
		return nil, errors.NewDatasetLoadError(string(entity), fmt.Errorf("no %s table", entity))
	}

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]string(nil), r...)
	}
	return &domain.Table{
		Entity: entity,
		Header: append([]string(nil), t.Header...),
		Rows:   rows,
	}, nil
}
