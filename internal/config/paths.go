package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the resolved paths for one import run.
// This is the single source of truth for file locations used by the importer.
type Paths struct {
	BaseDir   string
	InputFile string
	OutputDir string
	LogsDir   string
	LogFile   string

	// Well-known output files; MetricsFile is telemetry and lives under LogsDir
	StudentsJSON      string
	GroupsJSON        string
	StudentGroupsJSON string
	StatisticsJSON    string
	StudentsCSV       string
	GroupsCSV         string
	StudentGroupsCSV  string
	MetricsFile       string
}

// GetPaths resolves the configured paths relative to the current working directory
func (c *Config) GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return c.ResolvePaths(wd), nil
}

// ResolvePaths resolves the configured paths against baseDir. Absolute paths are kept as-is.
func (c *Config) ResolvePaths(baseDir string) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(baseDir, p)
	}

	outputDir := resolve(c.Paths.OutputDir)
	logsDir := resolve(c.Paths.LogsDir)

	logFile := c.Logging.FilePath
	if logFile == "" {
		logFile = DefaultLogFile
	}
	if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(logsDir, logFile)
	}

	metricsFile := c.Telemetry.MetricsFile
	if metricsFile == "" {
		metricsFile = MetricsFile
	}
	if !filepath.IsAbs(metricsFile) {
		metricsFile = filepath.Join(logsDir, metricsFile)
	}

	return &Paths{
		BaseDir:   baseDir,
		InputFile: resolve(c.Paths.InputFile),
		OutputDir: outputDir,
		LogsDir:   logsDir,
		LogFile:   logFile,

		StudentsJSON:      filepath.Join(outputDir, StudentsJSONFile),
		GroupsJSON:        filepath.Join(outputDir, GroupsJSONFile),
		StudentGroupsJSON: filepath.Join(outputDir, StudentGroupsJSONFile),
		StatisticsJSON:    filepath.Join(outputDir, StatisticsJSONFile),
		StudentsCSV:       filepath.Join(outputDir, StudentsCSVFile),
		GroupsCSV:         filepath.Join(outputDir, GroupsCSVFile),
		StudentGroupsCSV:  filepath.Join(outputDir, StudentGroupsCSVFile),
		MetricsFile:       metricsFile,
	}
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// OutputFiles returns the output file paths for the given export format
func (p *Paths) OutputFiles(format string) []string {
	switch format {
	case FormatJSON:
		return []string{p.StudentsJSON, p.GroupsJSON, p.StudentGroupsJSON, p.StatisticsJSON}
	case FormatCSV:
		return []string{p.StudentsCSV, p.GroupsCSV, p.StudentGroupsCSV}
	default:
		return nil
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs how every path was resolved, for support diagnostics
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("Path resolution",
		slog.Group("paths",
			slog.String("base_dir", p.BaseDir),
			slog.String("input_file", p.InputFile),
			slog.String("output_dir", p.OutputDir),
			slog.String("logs_dir", p.LogsDir),
			slog.String("metrics_file", p.MetricsFile),
		),
		slog.Group("status",
			slog.Bool("input_exists", FileExists(p.InputFile)),
			slog.Bool("output_dir_exists", FileExists(p.OutputDir)),
		),
	)
}
