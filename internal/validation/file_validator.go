package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retailpulse/pkg/contracts/domain"
)

// FileValidator checks dataset files and output locations before a run touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDatasetDirectory checks that dir exists and holds a readable
// <entity>.csv for every requested entity. File names match case-insensitively
// when no exact name exists. All missing files are reported together.
func (v *FileValidator) ValidateDatasetDirectory(dir string, entities []domain.Entity) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Dataset directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("dataset directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Dataset path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var missing []string
	for _, e := range entities {
		if err := v.ValidateCSVFile(datasetPath(dir, entries, e.FileName())); err != nil {
			missing = append(missing, e.FileName())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset directory %s is missing %s", dir, strings.Join(missing, ", "))
	}

	v.logger.Debug("Dataset directory validated",
		slog.String("directory", dir),
		slog.Int("datasets", len(entities)))
	return nil
}

// datasetPath prefers an exact file name over a case-insensitive match
func datasetPath(dir string, entries []os.DirEntry, name string) string {
	for _, entry := range entries {
		if entry.Name() == name {
			return filepath.Join(dir, name)
		}
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), name) {
			return filepath.Join(dir, entry.Name())
		}
	}
	return filepath.Join(dir, name)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Check writability with a throwaway file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Warn("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	return nil
}

// ValidateCSVFile checks that path is a readable .csv file
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		return fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext)
	}
	return nil
}

// ValidateWorkbookFile checks that path is a readable .xlsx workbook
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return fmt.Errorf("file %s is not an Excel workbook (extension: %s)", path, ext)
	}

	// Office lock files share the extension
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}
	return nil
}

// ValidateHeader rejects a table whose header lacks a required column
func (v *FileValidator) ValidateHeader(table *domain.Table) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}
	missing := table.MissingColumns()
	if len(missing) == 0 {
		return nil
	}
	v.logger.Error("Dataset header is missing required columns",
		slog.String("entity", string(table.Entity)),
		slog.Any("missing", missing))
	return fmt.Errorf("%s dataset is missing required columns: %s",
		table.Entity, strings.Join(missing, ", "))
}
