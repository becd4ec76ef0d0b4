package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "floxcli/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "Flox_persons.xlsx", cfg.Paths.InputFile)
	assert.Equal(t, "data/processed", cfg.Paths.OutputDir)
	assert.Equal(t, "utf-8", cfg.Import.Encoding)
	assert.False(t, cfg.Import.AllowNullColumns)
	assert.Equal(t, []string{"json", "csv"}, cfg.Export.Formats)
	assert.Equal(t, 10, cfg.Export.LargestGroupsLimit)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Telemetry.EnableMetrics)

	require.NoError(t, cfg.Validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default().Paths, cfg.Paths)
				assert.Equal(t, []string{"json", "csv"}, cfg.Export.Formats)
			},
		},
		{
			name: "file overrides defaults",
			file: `
paths:
  input_file: people.csv
import:
  encoding: windows-1250
  delimiter: ";"
export:
  formats: [json]
  largest_groups_limit: 3
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "people.csv", cfg.Paths.InputFile)
				assert.Equal(t, "data/processed", cfg.Paths.OutputDir)
				assert.Equal(t, "windows-1250", cfg.Import.Encoding)
				assert.Equal(t, ";", cfg.Import.Delimiter)
				assert.Equal(t, []string{"json"}, cfg.Export.Formats)
				assert.Equal(t, 3, cfg.Export.LargestGroupsLimit)
			},
		},
		{
			name: "env overrides file",
			file: `
logging:
  level: warn
export:
  largest_groups_limit: 3
`,
			env: map[string]string{
				"FLOX_LOGGING_LEVEL":               "DEBUG",
				"FLOX_EXPORT_FORMATS":              "CSV",
				"FLOX_IMPORT_ALLOW_NULL_COLUMNS":   "true",
				"FLOX_TELEMETRY_TRACE_EXPORTER":    "stdout",
				"FLOX_EXPORT_LARGEST_GROUPS_LIMIT": "5",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, []string{"csv"}, cfg.Export.Formats)
				assert.True(t, cfg.Import.AllowNullColumns)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				assert.Equal(t, 5, cfg.Export.LargestGroupsLimit)
			},
		},
		{
			name:    "invalid encoding",
			file:    "import:\n  encoding: utf-16\n",
			wantErr: true,
		},
		{
			name:    "unknown export format",
			env:     map[string]string{"FLOX_EXPORT_FORMATS": "json,xml"},
			wantErr: true,
		},
		{
			name:    "zero largest groups limit",
			env:     map[string]string{"FLOX_EXPORT_LARGEST_GROUPS_LIMIT": "0"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "paths: [unterminated",
			wantErr: true,
		},
		{
			name:    "multi-character delimiter",
			file:    "import:\n  delimiter: \";;\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestValidate_ReportsFields(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Export.Formats = nil

	err := cfg.Validate()
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	fields, ok := appErr.Context["fields"].([]string)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestExportsFormat(t *testing.T) {
	cfg := Default()
	cfg.Export.Formats = []string{"json"}

	assert.True(t, cfg.ExportsFormat(FormatJSON))
	assert.False(t, cfg.ExportsFormat(FormatCSV))
}

func TestRevalidate(t *testing.T) {
	cfg := Default()
	cfg.Export.Formats = []string{" CSV", ""}
	cfg.Import.Encoding = "Windows-1250"

	require.NoError(t, cfg.Revalidate())
	assert.Equal(t, []string{"csv"}, cfg.Export.Formats)
	assert.Equal(t, EncodingWindows1250, cfg.Import.Encoding)

	cfg.Export.Formats = []string{"xml"}
	err := cfg.Revalidate()
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
