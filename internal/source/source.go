// Package source loads raw datasets from a directory of CSV files, an Excel
// workbook, an S3-compatible bucket or memory.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"retailpulse/internal/config"
	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Loader returns the raw table for one entity. Every failure is a
// DATASET_LOAD error carrying the entity name.
type Loader interface {
	Load(ctx context.Context, entity domain.Entity) (*domain.Table, error)
}

// Checker is implemented by loaders that can confirm every dataset exists
// before any is read
type Checker interface {
	Check(entities []domain.Entity) error
}

// ReadCSV reads a comma-delimited dataset whose first record is the header.
// Rows may be ragged; short rows decode missing cells as empty.
func ReadCSV(entity domain.Entity, r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s dataset is empty", entity)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", entity, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s rows: %w", entity, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return &domain.Table{Entity: entity, Header: header, Rows: rows}, nil
}

// NewLoader builds the loader selected by cfg.Input.Source
func NewLoader(cfg *config.Config, logger *slog.Logger) (Loader, error) {
	switch cfg.Input.Source {
	case config.SourceDir, "":
		return NewDirLoader(cfg.Input.Dir, logger), nil
	case config.SourceWorkbook:
		return NewWorkbookLoader(cfg.Input.Workbook, logger), nil
	case config.SourceObjectStore:
		store, err := NewMinioStore(cfg.ObjectStore)
		if err != nil {
			return nil, errors.NewConfigError("failed to create object store client", err)
		}
		return NewObjectStoreLoader(store, cfg.ObjectStore.Bucket, cfg.ObjectStore.Prefix, logger), nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown input source %q", cfg.Input.Source), nil)
	}
}
