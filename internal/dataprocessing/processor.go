package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "floxcli/internal/errors"
	"floxcli/internal/infrastructure"
	"floxcli/internal/ingest"
	"floxcli/pkg/contracts/domain"
)

// Processor runs the entity stages of an import over a validated table
type Processor struct {
	opts      ProcessingOptions
	extractor *Extractor
	tracer    *PipelineTracer
	logger    *slog.Logger
}

// NewProcessor creates a processor; zero-valued options take their defaults
func NewProcessor(opts ProcessingOptions) *Processor {
	defaults := DefaultOptions()
	if opts.LargestGroupsLimit < 1 {
		opts.LargestGroupsLimit = defaults.LargestGroupsLimit
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.Rules == nil {
		opts.Rules = defaults.Rules
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer, _ = NewPipelineTracer(nil)
	}

	return &Processor{
		opts:      opts,
		extractor: &Extractor{Rules: opts.Rules, Now: opts.Now},
		tracer:    opts.Tracer,
		logger:    infrastructure.WithComponent(opts.Logger, "processor"),
	}
}

// Run builds students, groups, relationships and statistics from table.
// Row failures are logged and skipped. The context is checked between stages.
func (p *Processor) Run(ctx context.Context, table *ingest.Table) (*Result, error) {
	rows := table.Rows()
	result := &Result{RowsRead: len(rows)}

	err := p.stage(ctx, StageStudents, func(ctx context.Context) (int, error) {
		students, err := p.buildStudents(ctx, rows, result)
		if err != nil {
			return 0, err
		}
		result.Students = students
		return students.Len(), nil
	})
	if err != nil {
		return nil, err
	}

	var tokens *TokenMap
	err = p.stage(ctx, StageGroups, func(ctx context.Context) (int, error) {
		tokens = CollectTokens(rows)
		result.Groups = p.extractor.Extract(tokens)
		return result.Groups.Len(), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageRelationships, func(ctx context.Context) (int, error) {
		result.Relationships = BuildRelationships(result.Students, result.Groups, tokens, p.opts.Now)
		return len(result.Relationships), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageStatistics, func(ctx context.Context) (int, error) {
		result.Statistics = ComputeStatistics(result.Students, result.Groups, result.Relationships, p.opts.LargestGroupsLimit)
		return 1, nil
	})
	if err != nil {
		return nil, err
	}

	p.tracer.RecordResult(ctx, result)
	p.logger.InfoContext(ctx, "Import processing completed",
		slog.Int("rows", result.RowsRead),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Int("students", result.Students.Len()),
		slog.Int("groups", result.Groups.Len()),
		slog.Int("relationships", len(result.Relationships)),
	)

	return result, nil
}

// stage checks for cancellation, then runs fn inside a span
func (p *Processor) stage(ctx context.Context, name string, fn func(context.Context) (int, error)) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewCancelledError(name, err)
	}

	ctx, span := p.tracer.TraceStage(ctx, name)
	defer span.End()

	start := time.Now()
	items, err := fn(ctx)
	duration := time.Since(start)

	p.tracer.RecordStageCompletion(ctx, span, name, duration, items, err)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Int("items", items),
		slog.Duration("duration", duration),
	)
	return nil
}

// buildStudents converts every row, skipping rows whose failure is recoverable.
// Each skip is logged at debug level; the total is logged once at the end.
func (p *Processor) buildStudents(ctx context.Context, rows []ingest.Row, result *Result) (*domain.StudentSet, error) {
	students := domain.NewStudentSet()
	for _, row := range rows {
		student, err := BuildStudent(row)
		if err != nil {
			appErr := rowAppError(row.Index, err)
			if appErr.Fatal() {
				return nil, appErr
			}

			result.RowsSkipped++
			var buildErr *StudentBuildError
			if errors.As(err, &buildErr) {
				result.RowErrors = append(result.RowErrors, buildErr)
				p.tracer.RecordRowError(ctx, buildErr.Row, buildErr.Field)
			}
			p.logger.DebugContext(ctx, "Skipping invalid row",
				slog.Int("row", row.Index),
				slog.Any("field", appErr.Context["field"]),
				slog.String("error", appErr.Error()),
			)
			continue
		}

		if students.Put(student) {
			result.DuplicateStudents++
			p.logger.WarnContext(ctx, "Duplicate user_id, later row replaces earlier one",
				slog.Int64("user_id", student.UserID),
				slog.Int("row", row.Index),
			)
		}
	}

	if result.RowsSkipped > 0 {
		p.logger.WarnContext(ctx, "Rows skipped",
			slog.Int("rows_skipped", result.RowsSkipped),
			slog.Int("rows", len(rows)),
		)
	}
	return students, nil
}

// rowAppError classifies a build failure. Anything that is not a
// StudentBuildError is not tied to the row and aborts the run.
func rowAppError(row int, err error) *apperrors.AppError {
	var buildErr *StudentBuildError
	if errors.As(err, &buildErr) {
		return buildErr.AppError()
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewAppError(apperrors.ErrTypeValidation, "failed to build student", err).
		WithContext("row", row)
}
