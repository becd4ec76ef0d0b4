package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"floxcli/internal/ingest"
)

// PersonsHeader is the column layout of a full persons export
var PersonsHeader = []string{
	"User ID", "Email", "Groups", "Title", "Name", "Surname", "Active", "Newsletter",
	"Internal Note", "Address Street", "Address City", "Address Zip", "Address Country", "Address Phone",
}

// Table builds an in-memory table the way the file importers do
func Table(header []string, rows ...[]string) *ingest.Table {
	return ingest.NewTable(header, rows, ingest.Metadata{Source: "memory", Format: "memory"})
}

// WriteCSV writes header and rows to name inside a fresh temp dir
func WriteCSV(t *testing.T, name string, header []string, rows ...[]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

// Clock is a deterministic time source that advances by Step on every call
type Clock struct {
	mu    sync.Mutex
	next  time.Time
	Step  time.Duration
	calls int
}

// NewClock creates a clock starting at start
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, Step: step}
}

// Now returns the current reading and advances the clock
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.Step)
	c.calls++
	return now
}

// Calls returns how many times Now was called
func (c *Clock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
