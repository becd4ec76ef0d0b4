package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"floxcli/internal/config"
	"floxcli/internal/dataprocessing"
	"floxcli/internal/exporter"
	"floxcli/internal/infrastructure"
	"floxcli/internal/ingest"
	"floxcli/pkg/contracts"
	"floxcli/pkg/contracts/domain"
)

// importRun wires the stages of one invocation together
type importRun struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	stdout    io.Writer
}

func (r *importRun) execute(ctx context.Context) (err error) {
	startTime := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	tracer, err := dataprocessing.NewPipelineTracer(r.providers)
	if err != nil {
		return err
	}
	sysMetrics, err := infrastructure.NewSystemMetrics(r.providers.Meter)
	if err != nil {
		return err
	}

	ctx, span := tracer.TraceRun(ctx, runID, r.paths.InputFile)
	defer span.End()
	defer func() {
		tracer.RecordRunCompletion(ctx, span, err)
		if err != nil {
			infrastructure.WithError(r.logger, err).ErrorContext(ctx, "Import run failed",
				slog.Duration("duration", time.Since(startTime)))
		}
		stats := sysMetrics.Collect(ctx, startTime)
		r.logger.InfoContext(ctx, "Run resources", slog.Any("system", stats))
		if r.cfg.Telemetry.EnableMetrics {
			if werr := r.providers.WriteMetricsFile(r.paths.MetricsFile); werr != nil {
				r.logger.WarnContext(ctx, "Failed to write metrics file", slog.String("error", werr.Error()))
			}
		}
	}()

	r.logger.InfoContext(ctx, "Starting student import process",
		slog.String("input", r.paths.InputFile),
		slog.String("output_dir", r.paths.OutputDir),
		slog.String("version", contracts.GetVersionString()))

	table, err := r.ingest(ctx, tracer)
	if err != nil {
		return err
	}

	processor := dataprocessing.NewProcessor(dataprocessing.ProcessingOptions{
		LargestGroupsLimit: r.cfg.Export.LargestGroupsLimit,
		Logger:             r.logger,
		Tracer:             tracer,
	})
	result, err := processor.Run(ctx, table)
	if err != nil {
		return err
	}

	exp := exporter.NewExporter(r.paths, exporter.Options{
		Formats: r.cfg.Export.Formats,
		CSVBOM:  r.cfg.Export.CSVBOM,
		Logger:  r.logger,
		Metrics: tracer.Metrics(),
	})
	written, err := exp.Export(ctx, &exporter.Bundle{
		Students:      result.Students.All(),
		Groups:        result.Groups.Groups(),
		Relationships: result.Relationships,
		Statistics:    result.Statistics,
	})
	if err != nil {
		return err
	}

	printSummary(r.stdout, result, written)
	r.logger.InfoContext(ctx, "Import process completed successfully",
		slog.Int("files_written", len(written)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}

func (r *importRun) ingest(ctx context.Context, tracer *dataprocessing.PipelineTracer) (*ingest.Table, error) {
	ctx, span := tracer.TraceStage(ctx, "ingest")
	defer span.End()
	start := time.Now()

	table, err := r.load(ctx)
	rows := 0
	if table != nil {
		rows = table.Metadata.RowCount
	}
	tracer.RecordStageCompletion(ctx, span, "ingest", time.Since(start), rows, err)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Source loaded",
		slog.String("format", table.Metadata.Format),
		slog.String("sheet", table.Metadata.Sheet),
		slog.Int("rows", table.Metadata.RowCount),
		slog.Int("columns", table.Metadata.ColumnCount),
		slog.Int("empty_rows_pruned", table.Metadata.EmptyRowsPruned))
	return table, nil
}

func (r *importRun) load(ctx context.Context) (*ingest.Table, error) {
	opts := importOptions(r.cfg, r.logger)
	if !r.cfg.Import.SkipValidation {
		return ingest.Import(ctx, r.paths.InputFile, opts)
	}

	imp, err := ingest.Open(r.paths.InputFile, opts)
	if err != nil {
		return nil, err
	}
	r.logger.WarnContext(ctx, "Structural validation skipped")
	return imp.Load(ctx)
}

// printSummary writes the human-readable run report
func printSummary(w io.Writer, result *dataprocessing.Result, written []string) {
	s := result.Statistics
	fmt.Fprintln(w, "IMPORT STATISTICS:")
	fmt.Fprintf(w, "Rows read: %d\n", result.RowsRead)
	fmt.Fprintf(w, "Rows skipped: %d\n", result.RowsSkipped)
	fmt.Fprintf(w, "Total students: %d\n", s.TotalStudents)
	fmt.Fprintf(w, "Total groups: %d\n", s.TotalGroups)
	fmt.Fprintf(w, "Total relationships: %d\n", s.TotalRelationships)
	fmt.Fprintf(w, "Students with groups: %d\n", s.StudentsWithGroups)
	fmt.Fprintf(w, "Students without groups: %d\n", s.StudentsWithoutGroups)
	fmt.Fprintf(w, "Average students per group: %.2f\n", s.StudentsPerGroupAvg)

	fmt.Fprintln(w, "\nGroups by category:")
	categories := make([]domain.Category, 0, len(s.GroupsByCategory))
	for c := range s.GroupsByCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %d\n", c, s.GroupsByCategory[c])
	}

	fmt.Fprintf(w, "\nTop %d largest groups:\n", len(s.LargestGroups))
	for i, g := range s.LargestGroups {
		fmt.Fprintf(w, "  %d. %s: %d students\n", i+1, g.Name, g.StudentCount)
	}

	if len(written) > 0 {
		fmt.Fprintln(w, "\nFiles written:")
		for _, f := range written {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
