package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"floxcli/internal/config"
	apperrors "floxcli/internal/errors"
	"floxcli/internal/infrastructure"
	"floxcli/internal/validation"
	"floxcli/pkg/contracts/domain"
)

// Bundle is everything one run persists
type Bundle struct {
	Students      []*domain.Student
	Groups        []*domain.Group
	Relationships []domain.StudentGroup
	Statistics    *domain.ImportStatistics
}

// Options configures an Exporter
type Options struct {
	Formats []string
	CSVBOM  bool
	Logger  *slog.Logger
	Metrics *infrastructure.ImportMetrics
}

// Exporter writes a Bundle to the configured output files.
// Files are staged next to the output directory and renamed into place only
// after every write succeeded, so a failed run leaves earlier output intact.
type Exporter struct {
	paths     *config.Paths
	formats   []string
	csvWriter *CSVWriter
	logger    *slog.Logger
	metrics   *infrastructure.ImportMetrics
	rename    func(oldpath, newpath string) error
}

// NewExporter creates an exporter writing to paths
func NewExporter(paths *config.Paths, opts Options) *Exporter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{config.FormatJSON, config.FormatCSV}
	}

	return &Exporter{
		paths:     paths,
		formats:   formats,
		csvWriter: NewCSVWriter(opts.CSVBOM, logger),
		logger:    infrastructure.WithComponent(logger, "exporter"),
		metrics:   opts.Metrics,
		rename:    os.Rename,
	}
}

type job struct {
	target string
	write  func(path string) error
}

// Export writes every enabled file and returns the final paths in a fixed order
func (e *Exporter) Export(ctx context.Context, b *Bundle) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("export", err)
	}

	if err := validation.NewFileValidator(e.logger).ValidateOutputDirectory(e.paths.OutputDir); err != nil {
		return nil, err
	}

	jobs, err := e.jobs(b)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(e.paths.OutputDir, ".staging-")
	if err != nil {
		return nil, apperrors.NewExportError("failed to create staging directory", err)
	}
	defer os.RemoveAll(staging)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			staged := filepath.Join(staging, filepath.Base(j.target))
			if err := j.write(staged); err != nil {
				return apperrors.NewExportError(fmt.Sprintf("failed to write %s", filepath.Base(j.target)), err).
					WithContext("file", j.target)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewCancelledError("export", ctxErr)
		}
		e.logger.ErrorContext(ctx, "Export failed, no files were replaced", slog.String("error", err.Error()))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("export", err)
	}

	written, err := e.commit(ctx, staging, jobs)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.FilesWritten.Add(ctx, int64(len(written)))
		e.metrics.StageDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("stage", "export"),
			attribute.String("status", "success"),
		))
	}

	return written, nil
}

// placed tracks one target touched by commit so it can be undone
type placed struct {
	target string
	backup string // empty when the target did not exist before
	moved  bool   // staged file is at target
}

// commit moves staged files over their targets. Existing targets are first
// parked in the staging directory; any rename failure puts every target back
// the way it was before returning.
func (e *Exporter) commit(ctx context.Context, staging string, jobs []job) ([]string, error) {
	backups := filepath.Join(staging, "previous")
	if err := os.Mkdir(backups, 0755); err != nil {
		return nil, apperrors.NewExportError("failed to create backup directory", err)
	}

	done := make([]placed, 0, len(jobs))
	fail := func(p placed, msg string, cause error) error {
		done = append(done, p)
		e.rollback(ctx, done)
		return apperrors.NewExportError(msg, cause).WithContext("file", p.target)
	}

	for _, j := range jobs {
		name := filepath.Base(j.target)
		p := placed{target: j.target}
		if _, err := os.Stat(j.target); err == nil {
			p.backup = filepath.Join(backups, name)
			if err := e.rename(j.target, p.backup); err != nil {
				p.backup = ""
				return nil, fail(p, fmt.Sprintf("failed to back up %s", name), err)
			}
		}
		if err := e.rename(filepath.Join(staging, name), j.target); err != nil {
			return nil, fail(p, fmt.Sprintf("failed to move %s into place", name), err)
		}
		p.moved = true
		done = append(done, p)
	}

	written := make([]string, 0, len(done))
	for _, p := range done {
		written = append(written, p.target)
		e.logger.InfoContext(ctx, "Exported file", slog.String("file", p.target))
	}
	return written, nil
}

// rollback undoes commit in reverse order. Files it cannot restore are
// logged by name so the operator knows which outputs are mixed.
func (e *Exporter) rollback(ctx context.Context, done []placed) {
	var unrestored []string
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		if p.moved {
			if err := os.Remove(p.target); err != nil && !os.IsNotExist(err) {
				unrestored = append(unrestored, p.target)
				continue
			}
		}
		if p.backup != "" {
			if err := os.Rename(p.backup, p.target); err != nil {
				unrestored = append(unrestored, p.target)
			}
		}
	}

	if len(unrestored) > 0 {
		e.logger.ErrorContext(ctx, "Export rollback incomplete, output directory holds mixed runs",
			slog.Any("files", unrestored))
		return
	}
	e.logger.WarnContext(ctx, "Export failed, previous files restored", slog.Int("files", len(done)))
}

func (e *Exporter) jobs(b *Bundle) ([]job, error) {
	var jobs []job
	for _, format := range e.formats {
		switch format {
		case config.FormatJSON:
			jobs = append(jobs, e.jsonJobs(b)...)
		case config.FormatCSV:
			jobs = append(jobs, e.csvJobs(b)...)
		default:
			return nil, apperrors.NewExportError(fmt.Sprintf("unsupported export format %q", format), nil)
		}
	}
	return jobs, nil
}

func (e *Exporter) jsonJobs(b *Bundle) []job {
	students := b.Students
	if students == nil {
		students = []*domain.Student{}
	}
	groups := b.Groups
	if groups == nil {
		groups = []*domain.Group{}
	}
	edges := b.Relationships
	if edges == nil {
		edges = []domain.StudentGroup{}
	}

	return []job{
		{target: e.paths.StudentsJSON, write: func(p string) error { return WriteJSON(p, students) }},
		{target: e.paths.GroupsJSON, write: func(p string) error { return WriteJSON(p, groups) }},
		{target: e.paths.StudentGroupsJSON, write: func(p string) error { return WriteJSON(p, edges) }},
		{target: e.paths.StatisticsJSON, write: func(p string) error { return WriteJSON(p, b.Statistics) }},
	}
}

func (e *Exporter) csvJobs(b *Bundle) []job {
	return []job{
		{target: e.paths.StudentsCSV, write: func(p string) error {
			records := make([][]string, 0, len(b.Students))
			for _, s := range b.Students {
				records = append(records, studentRecord(s))
			}
			return e.csvWriter.WriteCSV(p, StudentHeaders, records)
		}},
		{target: e.paths.GroupsCSV, write: func(p string) error {
			records := make([][]string, 0, len(b.Groups))
			for _, g := range b.Groups {
				records = append(records, groupRecord(g))
			}
			return e.csvWriter.WriteCSV(p, GroupHeaders, records)
		}},
		{target: e.paths.StudentGroupsCSV, write: func(p string) error {
			sw, err := e.csvWriter.CreateStreamWriter(p, StudentGroupHeaders)
			if err != nil {
				return err
			}
			for _, edge := range b.Relationships {
				if err := sw.WriteRecord(studentGroupRecord(edge)); err != nil {
					sw.Close()
					return err
				}
			}
			return sw.Close()
		}},
	}
}
