package ingest

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "floxcli/internal/errors"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "user_id", NormalizeHeader(" User ID "))
	assert.Equal(t, "address_street", NormalizeHeader("Address Street"))
	assert.Equal(t, "email", NormalizeHeader("EMAIL"))
}

func TestNewTable(t *testing.T) {
	header := []string{"User ID", "Email", "Groups", ""}
	cells := [][]string{
		{"1", " A@B.cz ", "X, Y"},
		{},
		{"", "", "", ""},
		{"2", "c@d.cz", "Z", "extra", "wide"},
	}

	tbl := NewTable(header, cells, Metadata{Source: "mem"})

	assert.Equal(t, []string{"user_id", "email", "groups", "unnamed_3", "unnamed_4"}, tbl.Columns)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, 0, tbl.Records[0].Index)
	assert.Equal(t, 3, tbl.Records[1].Index)
	assert.Equal(t, 2, tbl.Metadata.EmptyRowsPruned)
	assert.Equal(t, 2, tbl.Metadata.RowCount)
	assert.Equal(t, 5, tbl.Metadata.ColumnCount)

	// short rows are padded with nulls
	assert.True(t, tbl.Records[0].Values[3].IsNull())
	assert.Equal(t, "A@B.cz", tbl.Records[0].Values[1].String())
}

func TestTable_Rows(t *testing.T) {
	tbl := NewTable(
		[]string{"user_id", "email", "groups", "address_phone", "active"},
		[][]string{{"7", "x@y.cz", "KURZ 2023", "420777123456", "0"}},
		Metadata{},
	)

	rows := tbl.Rows()
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, KindNumber, r.UserID.Kind)
	assert.Equal(t, "7", r.UserID.String())
	assert.Equal(t, "KURZ 2023", r.Groups.String())
	assert.Equal(t, KindNumber, r.AddressPhone.Kind)
	assert.Equal(t, "420777123456", r.AddressPhone.String())
	assert.False(t, r.Active.Truthy())
	assert.True(t, r.Title.IsNull())
	assert.True(t, r.Newsletter.IsNull())
	assert.Equal(t, 2, tbl.ColumnIndex("groups"))
	assert.Equal(t, -1, tbl.ColumnIndex("title"))
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		cells     [][]string
		allowNull bool
		wantErr   bool
		problems  int
	}{
		{
			name:   "valid",
			header: []string{"user_id", "email", "groups"},
			cells:  [][]string{{"1", "a@b.cz", "X"}},
		},
		{
			name:     "empty table",
			header:   []string{"user_id", "email", "groups"},
			wantErr:  true,
			problems: 1,
		},
		{
			name:     "duplicate columns after normalization",
			header:   []string{"user_id", "Email", "email ", "groups"},
			cells:    [][]string{{"1", "a", "b", "X"}},
			wantErr:  true,
			problems: 1,
		},
		{
			name:     "missing required column",
			header:   []string{"user_id", "email"},
			cells:    [][]string{{"1", "a@b.cz"}},
			wantErr:  true,
			problems: 1,
		},
		{
			name:     "entirely null column",
			header:   []string{"user_id", "email", "groups", "title"},
			cells:    [][]string{{"1", "a@b.cz", "X", ""}, {"2", "c@d.cz", "Y"}},
			wantErr:  true,
			problems: 1,
		},
		{
			name:      "entirely null column tolerated",
			header:    []string{"user_id", "email", "groups", "title"},
			cells:     [][]string{{"1", "a@b.cz", "X", ""}},
			allowNull: true,
		},
		{
			name:     "several problems reported together",
			header:   []string{"user_id", "user_id", "note"},
			cells:    [][]string{{"1", "2", ""}},
			wantErr:  true,
			problems: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			tbl := NewTable(tt.header, tt.cells, Metadata{})

			err := ValidateTable(tbl, tt.allowNull, logger)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Len(t, appErr.Context["problems"], tt.problems)
			assert.Contains(t, buf.String(), "Validation error")
		})
	}
}

func TestValidateTable_Nil(t *testing.T) {
	err := ValidateTable(nil, false, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
