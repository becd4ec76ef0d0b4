package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floxcli/internal/config"
	apperrors "floxcli/internal/errors"
	"floxcli/internal/infrastructure"
	"floxcli/internal/shared/testutil"
)

func personsTable() [][]string {
	return [][]string{
		{"1001", "Jana@Example.cz", "KURZ A 2023, LEKTOŘI", "", "Jana", "Nováková", "1", "0", "", "", "", "", "", "777123456"},
		{"bad", "x@example.cz", "KURZ B", "", "X", "", "", "", "", "", "", "", "", ""},
		{"1002", "petr@example.cz", "Seminář 2022-2023", "Mgr.", "Petr", "Svoboda", "", "", "", "", "", "", "", "+420 777"},
		{"1003", "eva@example.cz", "", "", "Eva", "", "", "", "", "", "", "", "", ""},
		{"1001", "jana.new@example.cz", "Seminář 2022-2023", "", "Jana", "Nováková", "1", "1", "", "", "", "", "", ""},
	}
}

func TestProcessor_Run(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	clock := testutil.NewClock(time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC), time.Second)

	p := NewProcessor(ProcessingOptions{Logger: logger, Now: clock.Now})
	result, err := p.Run(context.Background(), testutil.Table(testutil.PersonsHeader, personsTable()...))
	require.NoError(t, err)

	assert.Equal(t, 5, result.RowsRead)
	assert.Equal(t, 2, result.RowsSkipped)
	assert.Equal(t, 1, result.DuplicateStudents)
	require.Len(t, result.RowErrors, 2)
	assert.Equal(t, 1, result.RowErrors[0].Row)
	assert.Equal(t, 2, result.RowErrors[1].Row)

	// last write wins but keeps its first position
	students := result.Students.All()
	require.Len(t, students, 2)
	assert.Equal(t, int64(1001), students[0].UserID)
	assert.Equal(t, "jana.new@example.cz", students[0].Email)
	assert.True(t, students[0].Newsletter)
	assert.Equal(t, int64(1003), students[1].UserID)

	// the bad-id row contributes no group; 1002 was skipped but its group still exists
	names := make([]string, 0)
	for _, g := range result.Groups.Groups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"KURZ A 2023", "LEKTOŘI", "Seminář 2022-2023"}, names)

	seminar, _ := result.Groups.Get(3)
	assert.Equal(t, []int64{1001}, seminar.StudentIDs.Sorted())
	require.NotNil(t, seminar.Year)
	assert.Equal(t, "2022-2023", *seminar.Year)

	assert.Len(t, result.Relationships, 3)
	assert.Equal(t, 3, result.Statistics.TotalRelationships)
	assert.Equal(t, 1, result.Statistics.StudentsWithGroups)
	assert.Equal(t, 1, result.Statistics.StudentsWithoutGroups)
	assert.Equal(t, 1.0, result.Statistics.StudentsPerGroupAvg)

	testutil.AssertNoErrors(t, handler)
	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Skipping invalid row")
	testutil.AssertLogAttr(t, handler, "row", int64(1))
	testutil.AssertLogAttr(t, handler, "field", "address_phone")
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Rows skipped")
	testutil.AssertLogAttr(t, handler, "rows_skipped", int64(2))
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Duplicate user_id")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Import processing completed")
}

func TestProcessor_KeepsSourceText(t *testing.T) {
	tbl := testutil.Table([]string{"user_id", "email", "groups"},
		[]string{"9007199254740993", "a@example.cz", "2023.10"},
		[]string{"9007199254740992", "b@example.cz", "True, KURZ 1E3"},
	)

	p := NewProcessor(ProcessingOptions{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	result, err := p.Run(context.Background(), tbl)
	require.NoError(t, err)

	// neighbouring ids beyond float64 precision stay distinct
	assert.Equal(t, 0, result.DuplicateStudents)
	require.Equal(t, 2, result.Students.Len())
	_, ok := result.Students.Get(9007199254740993)
	assert.True(t, ok)
	_, ok = result.Students.Get(9007199254740992)
	assert.True(t, ok)

	names := make([]string, 0)
	for _, g := range result.Groups.Groups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"2023.10", "KURZ 1E3", "True"}, names)

	numeric, _ := result.Groups.Get(1)
	require.NotNil(t, numeric.Year)
	assert.Equal(t, "2023", *numeric.Year)
}

func TestRowAppError(t *testing.T) {
	buildErr := &StudentBuildError{Row: 4, Field: "user_id", Err: errors.New("not an integer")}
	appErr := rowAppError(4, buildErr)
	assert.Equal(t, apperrors.ErrTypeRow, appErr.Type)
	assert.False(t, appErr.Fatal())
	assert.Equal(t, "user_id", appErr.Context["field"])
	assert.Equal(t, 4, appErr.Context["row"])

	wrapped := rowAppError(4, fmt.Errorf("decode: %w", apperrors.NewSourceError("broken cell", nil)))
	assert.Equal(t, apperrors.ErrTypeSource, wrapped.Type)
	assert.True(t, wrapped.Fatal())

	plain := rowAppError(9, errors.New("unexpected"))
	assert.True(t, plain.Fatal())
	assert.Equal(t, 9, plain.Context["row"])
}

func TestProcessor_Idempotent(t *testing.T) {
	run := func() *Result {
		p := NewProcessor(ProcessingOptions{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
		r, err := p.Run(context.Background(), testutil.Table(testutil.PersonsHeader, personsTable()...))
		require.NoError(t, err)
		return r
	}

	first, second := run(), run()
	require.Equal(t, first.Groups.Len(), second.Groups.Len())
	for i, g := range first.Groups.Groups() {
		assert.Equal(t, g.GroupID, second.Groups.Groups()[i].GroupID)
		assert.Equal(t, g.Name, second.Groups.Groups()[i].Name)
	}
	assert.Equal(t, first.Statistics, second.Statistics)
}

func TestProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(DefaultOptions())
	_, err := p.Run(ctx, testutil.Table(testutil.PersonsHeader, personsTable()...))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_Defaults(t *testing.T) {
	p := NewProcessor(ProcessingOptions{})
	assert.Equal(t, config.DefaultLargestGroupsLimit, p.opts.LargestGroupsLimit)
	assert.NotNil(t, p.opts.Now)
	assert.Equal(t, len(CategoryRules), len(p.opts.Rules))
	assert.NotNil(t, p.tracer)
	assert.Nil(t, p.tracer.Metrics())
}

func TestProcessor_WithTelemetry(t *testing.T) {
	var traces bytes.Buffer
	cfg := infrastructure.DefaultOTelConfig()
	cfg.TraceExporter = config.TraceExporterStdout
	cfg.TraceWriter = &traces

	providers, err := infrastructure.InitializeOTel(cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)

	tracer, err := NewPipelineTracer(providers)
	require.NoError(t, err)
	require.NotNil(t, tracer.Metrics())

	ctx, span := tracer.TraceRun(context.Background(), "run-1", "memory")
	p := NewProcessor(ProcessingOptions{Tracer: tracer, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	_, runErr := p.Run(ctx, testutil.Table(testutil.PersonsHeader, personsTable()...))
	tracer.RecordRunCompletion(ctx, span, runErr)
	span.End()
	require.NoError(t, runErr)

	metricsPath := filepath.Join(t.TempDir(), "import_metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(metricsPath))
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "import_row_errors_total")
	assert.Contains(t, string(data), "import_stage_duration_seconds")

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, traces.String(), "import.stage.students")
	assert.Contains(t, traces.String(), "import.stage.statistics")
	assert.Contains(t, traces.String(), "row.skipped")
}
