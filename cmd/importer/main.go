package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"floxcli/internal/config"
	apperrors "floxcli/internal/errors"
	"floxcli/internal/files"
	"floxcli/internal/infrastructure"
	"floxcli/internal/ingest"
	"floxcli/pkg/contracts"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// cliOptions holds flag values that override the loaded configuration
type cliOptions struct {
	configFile     string
	input          string
	output         string
	formats        string
	sheet          string
	encoding       string
	delimiter      string
	logLevel       string
	traceExporter  string
	allowNull      bool
	skipValidation bool
	listSheets     bool
	version        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &cliOptions{}
	fs.StringVar(&opts.configFile, "config", "", "path to config.yaml (defaults to FLOX_CONFIG_FILE, ./config.yaml, ./configs/config.yaml)")
	fs.StringVar(&opts.input, "in", "", "source file (.xlsx, .csv or .json) or a directory holding one")
	fs.StringVar(&opts.output, "out", "", "output directory")
	fs.StringVar(&opts.formats, "format", "", "comma-separated export formats: json,csv")
	fs.StringVar(&opts.sheet, "sheet", "", "workbook sheet to import (defaults to the first sheet)")
	fs.StringVar(&opts.encoding, "encoding", "", "text source encoding: utf-8, windows-1250, iso-8859-2")
	fs.StringVar(&opts.delimiter, "delimiter", "", "CSV delimiter (sniffed when empty)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.traceExporter, "trace", "", "trace exporter: none, stdout")
	fs.BoolVar(&opts.allowNull, "allow-null-columns", false, "tolerate entirely empty columns")
	fs.BoolVar(&opts.skipValidation, "skip-validation", false, "skip structural validation of the source table")
	fs.BoolVar(&opts.listSheets, "list-sheets", false, "print the sheets of a workbook and exit")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// applyOverrides copies explicitly set flags onto cfg and re-validates it
func applyOverrides(cfg *config.Config, opts *cliOptions) error {
	if opts.input != "" {
		cfg.Paths.InputFile = opts.input
	}
	if opts.output != "" {
		cfg.Paths.OutputDir = opts.output
	}
	if opts.formats != "" {
		cfg.Export.Formats = strings.Split(opts.formats, ",")
	}
	if opts.sheet != "" {
		cfg.Import.SheetName = opts.sheet
	}
	if opts.encoding != "" {
		cfg.Import.Encoding = opts.encoding
	}
	if opts.delimiter != "" {
		cfg.Import.Delimiter = opts.delimiter
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.traceExporter != "" {
		cfg.Telemetry.TraceExporter = opts.traceExporter
	}
	if opts.allowNull {
		cfg.Import.AllowNullColumns = true
	}
	if opts.skipValidation {
		cfg.Import.SkipValidation = true
	}
	return cfg.Revalidate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}
	if err := applyOverrides(cfg, opts); err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve paths: %v\n", err)
		return exitFailed
	}

	source, err := files.ResolveSource(paths.InputFile)
	if err != nil {
		fmt.Fprintf(stderr, "import failed: %v\n", err)
		return exitFailed
	}
	paths.InputFile = source

	if opts.listSheets {
		return listSheets(paths.InputFile, cfg, stdout, stderr)
	}

	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(stderr, "failed to create directories: %v\n", err)
		return exitFailed
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitFailed
	}
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution(logger)

	traceWriter, closeTrace, err := openTraceWriter(cfg.Telemetry, stderr)
	if err != nil {
		logger.Error("Failed to open trace file", slog.String("error", err.Error()))
		return exitFailed
	}
	defer closeTrace()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, traceWriter), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailed
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	imp := &importRun{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		providers: providers,
		stdout:    stdout,
	}
	if err := imp.execute(ctx); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			logger.Error("Import failed",
				slog.String("type", string(appErr.Type)),
				slog.String("error", err.Error()),
				slog.Any("context", appErr.Context))
		} else {
			logger.Error("Import failed", slog.String("error", err.Error()))
		}
		fmt.Fprintf(stderr, "import failed: %v\n", err)
		return exitFailed
	}

	return exitOK
}

// openTraceWriter picks the stdout exporter destination; stdout itself carries the summary
func openTraceWriter(cfg config.TelemetryConfig, stderr io.Writer) (io.Writer, func(), error) {
	if cfg.TraceFile == "" {
		return stderr, func() {}, nil
	}
	f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func listSheets(path string, cfg *config.Config, stdout, stderr io.Writer) int {
	imp, err := ingest.Open(path, importOptions(cfg, slog.New(slog.NewTextHandler(stderr, nil))))
	if err != nil {
		fmt.Fprintf(stderr, "cannot open %s: %v\n", path, err)
		return exitFailed
	}
	excel, ok := imp.(*ingest.ExcelImporter)
	if !ok {
		fmt.Fprintf(stderr, "%s is not a workbook\n", path)
		return exitUsage
	}
	sheets, err := excel.Sheets()
	if err != nil {
		fmt.Fprintf(stderr, "cannot read sheets: %v\n", err)
		return exitFailed
	}
	for _, s := range sheets {
		fmt.Fprintf(stdout, "%s\t%d rows\t%s\n", s.Name, s.Rows, strings.Join(s.Columns, ", "))
	}
	return exitOK
}

func importOptions(cfg *config.Config, logger *slog.Logger) ingest.Options {
	return ingest.Options{
		SheetName:        cfg.Import.SheetName,
		Encoding:         cfg.Import.Encoding,
		Delimiter:        cfg.Import.Delimiter,
		AllowNullColumns: cfg.Import.AllowNullColumns,
		Logger:           logger,
	}
}
