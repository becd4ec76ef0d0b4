package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "floxcli/internal/errors"
)

// ValidateTable runs the structural checks shared by every importer.
// All problems are collected and returned as one VALIDATION error.
func ValidateTable(t *Table, allowNullColumns bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var problems []string

	if t == nil || len(t.Records) == 0 {
		problems = append(problems, "table is empty")
	}

	if t != nil {
		if dups := duplicateColumns(t.Columns); len(dups) > 0 {
			problems = append(problems, fmt.Sprintf("duplicate columns found: %s", strings.Join(dups, ", ")))
		}

		if missing := missingColumns(t.Columns, RequiredColumns); len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
		}

		if len(t.Records) > 0 {
			if nulls := nullColumns(t); len(nulls) > 0 {
				if allowNullColumns {
					logger.Warn("Completely null columns tolerated",
						slog.Any("columns", nulls))
				} else {
					problems = append(problems, fmt.Sprintf("completely null columns: %s", strings.Join(nulls, ", ")))
				}
			}
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			logger.Error("Validation error", slog.String("problem", p))
		}
		return apperrors.NewValidationError("table failed structural validation").
			WithContext("problems", problems)
	}

	logger.Debug("Table validation passed",
		slog.Int("rows", len(t.Records)),
		slog.Int("columns", len(t.Columns)))
	return nil
}

func duplicateColumns(cols []string) []string {
	seen := make(map[string]int, len(cols))
	var dups []string
	for _, c := range cols {
		seen[c]++
		if seen[c] == 2 {
			dups = append(dups, c)
		}
	}
	return dups
}

func missingColumns(cols, required []string) []string {
	have := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		have[c] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

func nullColumns(t *Table) []string {
	var nulls []string
	for j, c := range t.Columns {
		allNull := true
		for _, r := range t.Records {
			if j < len(r.Values) && !r.Values[j].IsNull() {
				allNull = false
				break
			}
		}
		if allNull {
			nulls = append(nulls, c)
		}
	}
	return nulls
}

// unnamedColumns lists columns that had a blank header in the source
func unnamedColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		if strings.HasPrefix(c, "unnamed_") {
			out = append(out, c)
		}
	}
	return out
}
