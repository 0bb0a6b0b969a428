package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"retailpulse/internal/errors"
	"retailpulse/internal/files"
	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// WorkbookLoader reads one sheet per entity from an .xlsx file. Sheet names
// match the entity name ignoring case and surrounding spaces ("Orders ").
// The first non-empty row of a sheet is its header. When path is a directory
// its most recently modified workbook is read.
type WorkbookLoader struct {
	path      string
	validator *validation.FileValidator
	logger    *slog.Logger

	once  sync.Once
	rows  map[domain.Entity][][]string
	err   error
	names []string
}

// NewWorkbookLoader creates a loader for the workbook at path
func NewWorkbookLoader(path string, logger *slog.Logger) *WorkbookLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookLoader{
		path:      path,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// read opens the workbook once and caches every entity sheet it finds
func (l *WorkbookLoader) read() {
	path, err := l.resolve()
	if err != nil {
		l.err = err
		return
	}
	if err := l.validator.ValidateWorkbookFile(path); err != nil {
		l.err = err
		return
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		l.err = fmt.Errorf("failed to open workbook: %w", err)
		return
	}
	defer f.Close()

	l.rows = make(map[domain.Entity][][]string)
	l.names = f.GetSheetList()
	for _, name := range l.names {
		entity, err := domain.ParseEntity(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			continue
		}
		if _, seen := l.rows[entity]; seen {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			l.err = fmt.Errorf("failed to read sheet %q: %w", name, err)
			return
		}
		l.rows[entity] = rows
		l.logger.Debug("Found dataset sheet",
			slog.String("sheet_name", name),
			slog.String("entity", string(entity)),
			slog.Int("total_rows", len(rows)))
	}
}

// resolve picks the newest workbook when path names a directory
func (l *WorkbookLoader) resolve() (string, error) {
	info, err := os.Stat(l.path)
	if err != nil || !info.IsDir() {
		return l.path, nil
	}
	latest, err := files.NewDiscovery("").LatestWorkbook(l.path)
	if err != nil {
		return "", err
	}
	l.logger.Info("Using latest workbook",
		slog.String("directory", l.path),
		slog.String("workbook", latest.Name))
	return latest.Path, nil
}

// Load returns the entity's sheet as a table
func (l *WorkbookLoader) Load(ctx context.Context, entity domain.Entity) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err)
	}

	l.once.Do(l.read)
	if l.err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), l.err)
	}

	rows, ok := l.rows[entity]
	if !ok {
		return nil, errors.NewDatasetLoadError(string(entity),
			fmt.Errorf("workbook has no %s sheet (sheets: %s)", entity, strings.Join(l.names, ", ")))
	}

	headerRow := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, errors.NewDatasetLoadError(string(entity), fmt.Errorf("%s sheet is empty", entity))
	}

	data := make([][]string, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, append([]string(nil), row...))
	}

	return &domain.Table{
		Entity: entity,
		Header: append([]string(nil), rows[headerRow]...),
		Rows:   data,
	}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
