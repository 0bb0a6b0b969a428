package source

import (
	"context"
	"log/slog"
	"os"

	"retailpulse/internal/errors"
	"retailpulse/internal/files"
	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// DirLoader reads <entity>.csv files from a directory
type DirLoader struct {
	dir       string
	discovery *files.Discovery
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewDirLoader creates a loader for dir
func NewDirLoader(dir string, logger *slog.Logger) *DirLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirLoader{
		dir:       dir,
		discovery: files.NewDiscovery(""),
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Dir returns the dataset directory
func (l *DirLoader) Dir() string {
	return l.dir
}

// Check verifies the directory holds every entity's file, naming all
// missing ones in a single DATASET_LOAD error
func (l *DirLoader) Check(entities []domain.Entity) error {
	if err := l.validator.ValidateDatasetDirectory(l.dir, entities); err != nil {
		return errors.NewAppError(errors.ErrTypeDatasetLoad, "dataset directory check failed", err).
			WithContext("directory", l.dir)
	}
	return nil
}

// Load reads and parses one entity's CSV file
func (l *DirLoader) Load(ctx context.Context, entity domain.Entity) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}

	info, err := l.discovery.FindDataset(l.dir, entity)
	if err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}
	if err := l.validator.ValidateCSVFile(info.Path); err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}

	f, err := os.Open(info.Path)
	if err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}
	defer f.Close()

	table, err := ReadCSV(entity, f)
	if err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}

	l.logger.DebugContext(ctx, "Loaded dataset",
		slog.String("entity", string(entity)),
		slog.String("path", info.Path),
		slog.Int("rows", table.Len()))
	return table, nil
}
