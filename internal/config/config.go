package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "floxcli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Import    ImportConfig    `yaml:"import" envconfig:"IMPORT"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ImportConfig controls how the source table is read and validated
type ImportConfig struct {
	SheetName        string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	Encoding         string `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=utf-8 windows-1250 iso-8859-2"`
	Delimiter        string `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,len=1"`
	AllowNullColumns bool   `yaml:"allow_null_columns" envconfig:"ALLOW_NULL_COLUMNS"`
	SkipValidation   bool   `yaml:"skip_validation" envconfig:"SKIP_VALIDATION"`
}

// ExportConfig controls which files are written and how
type ExportConfig struct {
	Formats            []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=json csv"`
	CSVBOM             bool     `yaml:"csv_bom" envconfig:"CSV_BOM"`
	LargestGroupsLimit int      `yaml:"largest_groups_limit" envconfig:"LARGEST_GROUPS_LIMIT" validate:"min=1"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

var validate = validator.New()

// Load loads configuration from defaults, the config file, .env and environment variables.
// Precedence, lowest first: defaults, config file, environment (.env fills unset variables).
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path; an empty path skips the file
func LoadFrom(configFile string) (*Config, error) {
	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Fields carry no default tags, so unset variables leave file values alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads variables from an env file when it exists
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// normalize lower-cases enum-like values before validation
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Import.Encoding = strings.ToLower(strings.TrimSpace(c.Import.Encoding))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))

	formats := make([]string, 0, len(c.Export.Formats))
	for _, f := range c.Export.Formats {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	c.Export.Formats = formats

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed", err).
				WithContext("fields", fields)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Revalidate normalizes and validates cfg again after programmatic overrides
func (c *Config) Revalidate() error {
	c.normalize()
	return c.Validate()
}

// ExportsFormat reports whether the given output format is enabled
func (c *Config) ExportsFormat(format string) bool {
	for _, f := range c.Export.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			InputFile: DefaultInputFile,
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
		Import: ImportConfig{
			Encoding: EncodingUTF8,
		},
		Export: ExportConfig{
			Formats:            []string{FormatJSON, FormatCSV},
			LargestGroupsLimit: DefaultLargestGroupsLimit,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: TraceExporterNone,
			EnableMetrics: true,
			MetricsFile:   MetricsFile,
		},
	}
}
