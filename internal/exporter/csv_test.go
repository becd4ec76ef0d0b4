package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		bom     bool
		headers []string
		records [][]string
	}{
		{
			name:    "with BOM",
			bom:     true,
			headers: []string{"user_id", "group_ids"},
			records: [][]string{{"1", "1,2"}, {"2", ""}},
		},
		{
			name:    "without BOM",
			headers: []string{"name"},
			records: [][]string{{"Seminář \"Qigong\""}},
		},
		{
			name:    "headers only",
			headers: []string{"student_id", "group_id", "enrolled_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			w := NewCSVWriter(tt.bom, nil)

			require.NoError(t, w.WriteCSV(path, tt.headers, tt.records))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.bom, bytes.HasPrefix(data, utf8BOM))

			records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, len(tt.records)+1)
			assert.Equal(t, tt.headers, records[0])
			for i, rec := range tt.records {
				assert.Equal(t, rec, records[i+1])
			}
		})
	}
}

func TestCSVWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(false, nil)

	require.NoError(t, w.WriteCSV(path, []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}}))
	require.NoError(t, w.WriteCSV(path, []string{"a"}, [][]string{{"9"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n9\n", string(data))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	sw, err := NewCSVWriter(true, nil).CreateStreamWriter(path, []string{"id"})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, sw.WriteRecord([]string{formatInt(int64(i))}))
	}
	assert.Equal(t, 100, sw.Rows())
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 101)
	assert.Equal(t, []string{"99"}, records[100])
}

func TestCSVWriter_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(false, nil).WriteCSV(filepath.Join(blocker, "out.csv"), []string{"a"}, nil)
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	ts := time.Date(2024, 9, 1, 8, 30, 0, 500, time.UTC)
	s := "x"

	assert.Equal(t, "-12", formatInt(-12))
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
	assert.Equal(t, "", formatOptional(nil))
	assert.Equal(t, "x", formatOptional(&s))
	assert.Equal(t, "", formatTime(nil))
	assert.Equal(t, "2024-09-01T08:30:00.0000005Z", formatTime(&ts))
}
