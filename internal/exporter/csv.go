package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"retailpulse/internal/files"
)

// utf8BOM helps spreadsheet tools recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality rooted at one directory
type CSVWriter struct {
	dir     string
	manager *files.Manager
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		dir:     dir,
		manager: files.NewManager(logger),
		logger:  logger,
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV replaces the file with the given header and records
func (w *CSVWriter) WriteCSV(fileName string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(fileName)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", fileName),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	err := w.manager.WriteWith(fullPath, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write(utf8BOM); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

// WriteSimpleCSV writes a CSV file with headers and records and no BOM
func (w *CSVWriter) WriteSimpleCSV(fileName string, headers []string, records [][]string) (string, error) {
	return w.WriteCSV(fileName, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// resolvePath places relative names under the writer's directory
func (w *CSVWriter) resolvePath(fileName string) string {
	if filepath.IsAbs(fileName) || w.dir == "" {
		return fileName
	}
	return filepath.Join(w.dir, fileName)
}
