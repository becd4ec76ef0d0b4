package ingest

import (
	"fmt"
	"strings"
)

// Column names of the row contract
const (
	ColUserID         = "user_id"
	ColEmail          = "email"
	ColGroups         = "groups"
	ColTitle          = "title"
	ColName           = "name"
	ColSurname        = "surname"
	ColActive         = "active"
	ColNewsletter     = "newsletter"
	ColInternalNote   = "internal_note"
	ColAddressStreet  = "address_street"
	ColAddressCity    = "address_city"
	ColAddressZip     = "address_zip"
	ColAddressCountry = "address_country"
	ColAddressPhone   = "address_phone"
)

// RequiredColumns must be present in every source table
var RequiredColumns = []string{ColUserID, ColEmail, ColGroups}

// Metadata describes where a table came from
type Metadata struct {
	Source          string   `json:"source"`
	Format          string   `json:"format"`
	Sheet           string   `json:"sheet,omitempty"`
	Sheets          []string `json:"sheets,omitempty"`
	Encoding        string   `json:"encoding,omitempty"`
	Delimiter       string   `json:"delimiter,omitempty"`
	RowCount        int      `json:"row_count"`
	ColumnCount     int      `json:"column_count"`
	EmptyRowsPruned int      `json:"empty_rows_pruned"`
}

// Record is one data row of a table, aligned with Table.Columns
type Record struct {
	// Index is the zero-based position among the data rows of the source
	Index  int
	Values []Value
}

// Table is a loaded source: normalized column names and typed cells
type Table struct {
	Columns  []string
	Records  []Record
	Metadata Metadata
}

// Row is the typed row contract consumed by the student builder
type Row struct {
	Index int

	UserID         Value
	Email          Value
	Groups         Value
	Title          Value
	Name           Value
	Surname        Value
	Active         Value
	Newsletter     Value
	InternalNote   Value
	AddressStreet  Value
	AddressCity    Value
	AddressZip     Value
	AddressCountry Value
	AddressPhone   Value
}

// NormalizeHeader trims and lower-cases a header and replaces spaces with underscores
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// normalizeHeaders applies NormalizeHeader and names blank headers unnamed_<n>
func normalizeHeaders(raw []string) []string {
	cols := make([]string, len(raw))
	for i, h := range raw {
		cols[i] = NormalizeHeader(h)
		if cols[i] == "" {
			cols[i] = fmt.Sprintf("unnamed_%d", i)
		}
	}
	return cols
}

// NewTable builds a table from a header and text cells. Short rows are padded
// with nulls, wide rows grow unnamed columns, and all-empty rows are pruned.
func NewTable(header []string, cells [][]string, md Metadata) *Table {
	width := len(header)
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}
	padded := make([]string, width)
	copy(padded, header)

	t := &Table{Columns: normalizeHeaders(padded), Metadata: md}
	for i, row := range cells {
		values := make([]Value, width)
		empty := true
		for j := range values {
			if j < len(row) {
				values[j] = Infer(row[j])
			}
			if !values[j].IsNull() {
				empty = false
			}
		}
		if empty {
			t.Metadata.EmptyRowsPruned++
			continue
		}
		t.Records = append(t.Records, Record{Index: i, Values: values})
	}
	t.Metadata.RowCount = len(t.Records)
	t.Metadata.ColumnCount = len(t.Columns)
	return t
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Rows maps every record onto the row contract. Missing columns read as null.
func (t *Table) Rows() []Row {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}
	get := func(r Record, col string) Value {
		i, ok := idx[col]
		if !ok || i >= len(r.Values) {
			return Null()
		}
		return r.Values[i]
	}

	rows := make([]Row, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, Row{
			Index:          r.Index,
			UserID:         get(r, ColUserID),
			Email:          get(r, ColEmail),
			Groups:         get(r, ColGroups),
			Title:          get(r, ColTitle),
			Name:           get(r, ColName),
			Surname:        get(r, ColSurname),
			Active:         get(r, ColActive),
			Newsletter:     get(r, ColNewsletter),
			InternalNote:   get(r, ColInternalNote),
			AddressStreet:  get(r, ColAddressStreet),
			AddressCity:    get(r, ColAddressCity),
			AddressZip:     get(r, ColAddressZip),
			AddressCountry: get(r, ColAddressCountry),
			AddressPhone:   get(r, ColAddressPhone),
		})
	}
	return rows
}
