package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates dataset files under a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// passed to its methods are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by name
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findFiles(dir, ".csv")
}

// FindWorkbooks finds all .xlsx files in the specified directory, sorted by
// name. Office lock files ("~$report.xlsx") are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	files, err := d.findFiles(dir, ".xlsx")
	if err != nil {
		return nil, err
	}
	kept := files[:0]
	for _, f := range files {
		if !strings.HasPrefix(f.Name, "~$") {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// LatestWorkbook returns the most recently modified workbook in dir
func (d *Discovery) LatestWorkbook(dir string) (FileInfo, error) {
	files, err := d.FindWorkbooks(dir)
	if err != nil {
		return FileInfo{}, err
	}
	latest, ok := GetLatestFile(files)
	if !ok {
		return FileInfo{}, fmt.Errorf("no .xlsx workbook in %s: %w", d.resolve(dir), os.ErrNotExist)
	}
	return latest, nil
}

func (d *Discovery) findFiles(dir, ext string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindDataset returns the CSV file for an entity. An exact "<entity>.csv"
// wins; otherwise the name is matched case-insensitively ("Orders.CSV").
func (d *Discovery) FindDataset(dir string, entity domain.Entity) (FileInfo, error) {
	files, err := d.FindCSVFiles(dir)
	if err != nil {
		return FileInfo{}, err
	}

	want := entity.FileName()
	var fallback *FileInfo
	for i := range files {
		if files[i].Name == want {
			return files[i], nil
		}
		if fallback == nil && strings.EqualFold(files[i].Name, want) {
			fallback = &files[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return FileInfo{}, fmt.Errorf("no %s in %s: %w", want, d.resolve(dir), os.ErrNotExist)
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
