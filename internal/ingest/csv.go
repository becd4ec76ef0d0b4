package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "floxcli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidate delimiters, in preference order for ties
var sniffDelimiters = []rune{',', ';', '\t', '|'}

// CSVImporter reads delimited text with the first record as the header
type CSVImporter struct {
	path string
	opts Options
}

// NewCSVImporter creates an importer for delimited text files
func NewCSVImporter(path string, opts Options) *CSVImporter {
	return &CSVImporter{path: path, opts: opts}
}

// decoderFor returns the decoder for a configured encoding name
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder(), nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// decodeText converts raw bytes to UTF-8. A UTF-8 byte order mark always wins
// over the configured encoding and is stripped.
func decodeText(data []byte, encodingName string) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		encodingName = "utf-8"
	}

	dec, err := decoderFor(encodingName)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(encodingName, "utf-8") || encodingName == "" || strings.EqualFold(encodingName, "utf8") {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("source is not valid UTF-8, set import.encoding to windows-1250 or iso-8859-2")
		}
		return string(data), nil
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", encodingName, err)
	}
	return string(out), nil
}

// SniffDelimiter picks the candidate delimiter occurring most often outside
// quotes in the first line of text. Comma wins ties and the empty case.
func SniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}

	counts := make(map[rune]int, len(sniffDelimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best := ','
	for _, d := range sniffDelimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// Load reads and decodes the whole file
func (c *CSVImporter) Load(ctx context.Context) (*Table, error) {
	logger := c.opts.logger()

	if err := checkContext(ctx, "load"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to read CSV file", err).WithContext("file", c.path)
	}

	text, err := decodeText(data, c.opts.Encoding)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to decode CSV file", err).
			WithContext("file", c.path).
			WithContext("encoding", c.opts.Encoding)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewSourceError("CSV file has no content", nil).WithContext("file", c.path)
	}

	delim := SniffDelimiter(text)
	if c.opts.Delimiter != "" {
		delim, _ = utf8.DecodeRuneInString(c.opts.Delimiter)
	} else {
		logger.Info("Detected delimiter", slog.String("delimiter", string(delim)))
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Warn("Skipping malformed CSV line",
					slog.Int("line", perr.Line),
					slog.String("error", perr.Err.Error()))
				continue
			}
			return nil, apperrors.NewSourceError("failed to parse CSV file", err).WithContext("file", c.path)
		}
		records = append(records, rec)
		if len(records)%1000 == 0 {
			if err := checkContext(ctx, "load"); err != nil {
				return nil, err
			}
		}
	}

	if len(records) == 0 {
		return nil, apperrors.NewSourceError("CSV file has no header", nil).WithContext("file", c.path)
	}

	encName := c.opts.Encoding
	if encName == "" || bytes.HasPrefix(data, utf8BOM) {
		encName = "utf-8"
	}

	t := NewTable(records[0], records[1:], Metadata{
		Source:    c.path,
		Format:    "csv",
		Encoding:  encName,
		Delimiter: string(delim),
	})

	logger.Info("Loaded CSV file",
		slog.String("file", c.path),
		slog.Int("rows", t.Metadata.RowCount),
		slog.Int("columns", t.Metadata.ColumnCount))

	return t, nil
}

// Validate runs the shared structural checks
func (c *CSVImporter) Validate(t *Table) error {
	return ValidateTable(t, c.opts.AllowNullColumns, c.opts.logger())
}
