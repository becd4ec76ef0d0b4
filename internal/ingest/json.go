package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "floxcli/internal/errors"
)

// JSONImporter reads an array of flat objects, one object per row
type JSONImporter struct {
	path string
	opts Options

	nested map[string]struct{}
}

// NewJSONImporter creates an importer for JSON record arrays
func NewJSONImporter(path string, opts Options) *JSONImporter {
	return &JSONImporter{path: path, opts: opts}
}

// Load decodes the records. Column order follows first appearance of each key;
// keys are normalized like spreadsheet headers.
func (j *JSONImporter) Load(ctx context.Context) (*Table, error) {
	logger := j.opts.logger()

	if err := checkContext(ctx, "load"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to read JSON file", err).WithContext("file", j.path)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewSourceError("invalid JSON format, expected an array of objects", err).
			WithContext("file", j.path)
	}

	j.nested = make(map[string]struct{})
	colIndex := make(map[string]int)
	var header []string
	typed := make([][]Value, 0, len(raw))

	for i, msg := range raw {
		keys, values, err := j.decodeObject(msg)
		if err != nil {
			return nil, apperrors.NewSourceError(fmt.Sprintf("record %d is not a JSON object", i), err).
				WithContext("file", j.path)
		}
		row := make([]Value, len(header))
		for k, key := range keys {
			idx, ok := colIndex[key]
			if !ok {
				idx = len(header)
				colIndex[key] = idx
				header = append(header, key)
			}
			for len(row) <= idx {
				row = append(row, Null())
			}
			row[idx] = values[k]
		}
		typed = append(typed, row)

		if i%1000 == 999 {
			if err := checkContext(ctx, "load"); err != nil {
				return nil, err
			}
		}
	}

	t := &Table{
		Columns: normalizeHeaders(header),
		Metadata: Metadata{
			Source:   j.path,
			Format:   "json",
			Encoding: "utf-8",
		},
	}
	for i, row := range typed {
		for len(row) < len(header) {
			row = append(row, Null())
		}
		empty := true
		for _, v := range row {
			if !v.IsNull() {
				empty = false
				break
			}
		}
		if empty {
			t.Metadata.EmptyRowsPruned++
			continue
		}
		t.Records = append(t.Records, Record{Index: i, Values: row})
	}
	t.Metadata.RowCount = len(t.Records)
	t.Metadata.ColumnCount = len(t.Columns)

	logger.Info("Loaded JSON file",
		slog.String("file", j.path),
		slog.Int("rows", t.Metadata.RowCount),
		slog.Int("columns", t.Metadata.ColumnCount))

	return t, nil
}

// decodeObject walks one object with a token decoder to keep key order
func (j *JSONImporter) decodeObject(msg json.RawMessage) ([]string, []Value, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("unexpected token %v", tok)
	}

	var keys []string
	var values []Value
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var rawVal json.RawMessage
		if err := dec.Decode(&rawVal); err != nil {
			return nil, nil, err
		}
		v, nested, err := jsonValue(rawVal)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if nested {
			j.nested[key] = struct{}{}
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return keys, values, nil
}

// jsonValue converts one JSON value. Nested objects and arrays are kept as raw JSON text.
func jsonValue(raw json.RawMessage) (Value, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null(), false, nil
	}

	switch trimmed[0] {
	case 'n':
		return Null(), false, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return Value{}, false, err
		}
		return BoolValue(b), false, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Value{}, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return Null(), false, nil
		}
		return StringValue(s), false, nil
	case '{', '[':
		return StringValue(string(trimmed)), true, nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return Value{}, false, err
		}
		f, err := n.Float64()
		if err != nil {
			return Value{}, false, err
		}
		v := NumberValue(f)
		// keep integer literals exact beyond float64 precision
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			v.Raw = n.String()
		}
		return v, false, nil
	}
}

// Validate runs the shared structural checks and warns about nested values
func (j *JSONImporter) Validate(t *Table) error {
	for key := range j.nested {
		j.opts.logger().Warn("Column contains nested structures", slog.String("column", key))
	}
	return ValidateTable(t, j.opts.AllowNullColumns, j.opts.logger())
}
