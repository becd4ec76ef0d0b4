// Package config provides centralized configuration management for the importer.
// It loads configuration from multiple sources, validates it and resolves every
// file path a run touches.
//
// # Configuration Sources
//
// Configuration is layered, lowest precedence first:
//
//	1. Default values (Default)
//	2. YAML configuration file (config.yaml, configs/config.yaml or FLOX_CONFIG_FILE)
//	3. Environment variables, with .env filling variables that are not already set
//
// Command line flags are applied on top by the importer binary.
//
// # Environment Variables
//
// All environment variables follow the pattern FLOX_<SECTION>_<FIELD>:
//
//	FLOX_PATHS_INPUT_FILE=Flox_persons.xlsx
//	FLOX_PATHS_OUTPUT_DIR=data/processed
//	FLOX_LOGGING_LEVEL=debug
//	FLOX_IMPORT_ENCODING=windows-1250
//	FLOX_EXPORT_FORMATS=json,csv
//	FLOX_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Paths are resolved against the working directory unless they are absolute:
//
//	paths, err := cfg.GetPaths()
//	paths.EnsureDirectories()
//	students := paths.StudentsJSON
//
// # Validation
//
// Configuration is validated at load time with go-playground/validator struct
// tags. Failures are returned as CONFIG application errors listing the
// offending fields.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
