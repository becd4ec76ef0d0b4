package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "floxcli/internal/errors"
)

// Source formats recognized by extension
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var formatByExtension = map[string]string{
	".xlsx": FormatExcel,
	".xlsm": FormatExcel,
	".xltx": FormatExcel,
	".xltm": FormatExcel,
	".csv":  FormatCSV,
	".tsv":  FormatCSV,
	".txt":  FormatCSV,
	".json": FormatJSON,
}

// FileValidator provides file checks run before a source is loaded or output is written
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

// DetectFormat maps a file extension onto a source format
func DetectFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xls" {
		return "", fmt.Errorf("legacy .xls workbooks are not supported, save the file as .xlsx")
	}
	format, ok := formatByExtension[ext]
	if !ok {
		return "", fmt.Errorf("unsupported source extension %q", ext)
	}
	return format, nil
}

// ValidateSourceFile checks that path is a readable, non-empty source in a supported
// format and returns that format. Failures are SOURCE errors.
func (v *FileValidator) ValidateSourceFile(path string) (string, error) {
	if err := v.ValidateFile(path); err != nil {
		return "", apperrors.NewSourceError("source file is not usable", err).
			WithContext("file", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Refusing temporary Excel lock file",
			slog.String("file", path))
		return "", apperrors.NewSourceError(fmt.Sprintf("file %s is a temporary Excel file", base), nil).
			WithContext("file", path)
	}

	format, err := DetectFormat(path)
	if err != nil {
		v.logger.Error("Unsupported source file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", apperrors.NewSourceError("unsupported source file", err).
			WithContext("file", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", apperrors.NewSourceError("failed to stat source file", err).
			WithContext("file", path)
	}
	if info.Size() == 0 {
		v.logger.Error("Source file is empty", slog.String("file", path))
		return "", apperrors.NewSourceError(fmt.Sprintf("source file %s is empty", base), nil).
			WithContext("file", path)
	}

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.String("format", format),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
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
