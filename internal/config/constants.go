package config

// Application constants for the Flox import tool
const (
	// Application Info
	AppName   = "floxcli"
	EnvPrefix = "FLOX"

	// Configuration sources
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"

	// File Paths (relative to the working directory)
	DefaultInputFile = "Flox_persons.xlsx"
	DefaultOutputDir = "data/processed"
	DefaultLogsDir   = "logs"
	DefaultLogFile   = "import.log"

	// Output file names
	StudentsJSONFile      = "students.json"
	GroupsJSONFile        = "groups.json"
	StudentGroupsJSONFile = "student_groups.json"
	StatisticsJSONFile    = "import_statistics.json"
	StudentsCSVFile       = "students.csv"
	GroupsCSVFile         = "groups.csv"
	StudentGroupsCSVFile  = "student_groups.csv"
	MetricsFile           = "import_metrics.prom"

	// Export formats
	FormatJSON = "json"
	FormatCSV  = "csv"

	// Source encodings accepted by the CSV importer
	EncodingUTF8        = "utf-8"
	EncodingWindows1250 = "windows-1250"
	EncodingISO88592    = "iso-8859-2"

	// Statistics
	DefaultLargestGroupsLimit = 10

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "both"

	// Telemetry
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
)
