package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "floxcli/internal/errors"
	"floxcli/internal/validation"
)

// FileInfo represents information about a discovered source file
type FileInfo struct {
	Path    string
	Name    string
	Format  string
	Size    int64
	ModTime time.Time
}

// Discovery finds importable source files below a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindSources lists the files in dir that the importer can read.
// Hidden files, Excel lock files and empty files are skipped.
// The result is ordered oldest first, ties by name.
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

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
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		format, err := validation.DetectFormat(name)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
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

// ResolveSource turns a directory into the newest source file inside it.
// Any other path is returned unchanged and checked later by the importer.
func ResolveSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	sources, err := NewDiscovery("").FindSources(path)
	if err != nil {
		return "", apperrors.NewSourceError("failed to scan source directory", err).
			WithContext("directory", path)
	}
	latest, ok := GetLatestFile(sources)
	if !ok {
		return "", apperrors.NewSourceError(fmt.Sprintf("no importable files in %s", path), nil).
			WithContext("directory", path)
	}
	return latest.Path, nil
}
