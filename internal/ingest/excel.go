package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	apperrors "floxcli/internal/errors"
)

// ExcelImporter reads the first row of a workbook sheet as the header
type ExcelImporter struct {
	path string
	opts Options
}

// NewExcelImporter creates an importer for an .xlsx workbook
func NewExcelImporter(path string, opts Options) *ExcelImporter {
	return &ExcelImporter{path: path, opts: opts}
}

// SheetInfo describes one worksheet
type SheetInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Sheets lists every sheet with its header row and data row count
func (e *ExcelImporter) Sheets() ([]SheetInfo, error) {
	f, err := excelize.OpenFile(e.path)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to open workbook", err).WithContext("file", e.path)
	}
	defer f.Close()

	var infos []SheetInfo
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			e.opts.logger().Warn("Could not read sheet",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		info := SheetInfo{Name: name}
		if len(rows) > 0 {
			info.Columns = normalizeHeaders(rows[0])
			info.Rows = len(rows) - 1
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Load reads the configured sheet, or the first one
func (e *ExcelImporter) Load(ctx context.Context) (*Table, error) {
	logger := e.opts.logger()

	if err := checkContext(ctx, "load"); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(e.path)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to open workbook", err).WithContext("file", e.path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewSourceError("workbook has no sheets", nil).WithContext("file", e.path)
	}

	sheet := sheets[0]
	if e.opts.SheetName != "" {
		if !slices.Contains(sheets, e.opts.SheetName) {
			return nil, apperrors.NewSourceError(fmt.Sprintf("sheet %q not found", e.opts.SheetName), nil).
				WithContext("file", e.path).
				WithContext("sheets", sheets)
		}
		sheet = e.opts.SheetName
	}

	logger.Info("Loading Excel file",
		slog.String("file", e.path),
		slog.String("sheet", sheet),
		slog.Int("sheet_count", len(sheets)))

	// Raw values keep numbers unformatted so ids and phones are not rounded
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewSourceError("failed to read sheet", err).
			WithContext("file", e.path).
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSourceError(fmt.Sprintf("sheet %q is empty", sheet), nil).
			WithContext("file", e.path)
	}

	if err := checkContext(ctx, "load"); err != nil {
		return nil, err
	}

	t := NewTable(rows[0], rows[1:], Metadata{
		Source: e.path,
		Format: "excel",
		Sheet:  sheet,
		Sheets: sheets,
	})

	logger.Info("Loaded Excel sheet",
		slog.Int("rows", t.Metadata.RowCount),
		slog.Int("columns", t.Metadata.ColumnCount))
	if t.Metadata.EmptyRowsPruned > 0 {
		logger.Warn("Found completely empty rows",
			slog.Int("count", t.Metadata.EmptyRowsPruned))
	}

	return t, nil
}

// Validate runs the shared structural checks and warns about blank headers
func (e *ExcelImporter) Validate(t *Table) error {
	if t != nil {
		if unnamed := unnamedColumns(t.Columns); len(unnamed) > 0 {
			e.opts.logger().Warn("Found unnamed columns", slog.Int("count", len(unnamed)))
		}
	}
	return ValidateTable(t, e.opts.AllowNullColumns, e.opts.logger())
}
