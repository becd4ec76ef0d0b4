package ingest

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "floxcli/internal/errors"
	"floxcli/internal/validation"
)

// Importer loads one tabular source and checks its structure
type Importer interface {
	// Load reads the whole source. Failures are SOURCE errors.
	Load(ctx context.Context) (*Table, error)
	// Validate runs structural checks. Failures are VALIDATION errors.
	Validate(t *Table) error
}

// Options configures the importers
type Options struct {
	// SheetName selects a workbook sheet; empty means the first sheet
	SheetName string
	// Encoding of text sources: utf-8, windows-1250 or iso-8859-2
	Encoding string
	// Delimiter for CSV; empty means sniff from the header line
	Delimiter string
	// AllowNullColumns downgrades entirely-null columns to a warning
	AllowNullColumns bool
	Logger           *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Open validates the source file and returns the importer for its format
func Open(path string, opts Options) (Importer, error) {
	format, err := validation.NewFileValidator(opts.logger()).ValidateSourceFile(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case validation.FormatExcel:
		return NewExcelImporter(path, opts), nil
	case validation.FormatCSV:
		return NewCSVImporter(path, opts), nil
	case validation.FormatJSON:
		return NewJSONImporter(path, opts), nil
	default:
		return nil, apperrors.NewSourceError(fmt.Sprintf("no importer for format %q", format), nil)
	}
}

// Import opens, loads and validates a source in one call
func Import(ctx context.Context, path string, opts Options) (*Table, error) {
	imp, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	t, err := imp.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := imp.Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// checkContext is called between rows while loading large sources
func checkContext(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewCancelledError(stage, err)
	}
	return nil
}
