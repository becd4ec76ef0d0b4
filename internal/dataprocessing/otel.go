package dataprocessing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"floxcli/internal/infrastructure"
)

const (
	TracerName = "floxcli.import"
)

// PipelineTracer provides OpenTelemetry instrumentation for import runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ImportMetrics
}

// NewPipelineTracer creates a tracer from the run's providers.
// A nil providers value yields a tracer that records nothing.
func NewPipelineTracer(providers *infrastructure.OTelProviders) (*PipelineTracer, error) {
	if providers == nil {
		return &PipelineTracer{tracer: tracenoop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreateImportMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create import metrics: %w", err)
	}

	return &PipelineTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// Metrics returns the import instruments, nil for a no-op tracer
func (pt *PipelineTracer) Metrics() *infrastructure.ImportMetrics {
	return pt.metrics
}

// TraceRun creates the root span of an import run
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "import.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source", source),
		),
	)
}

// TraceStage creates a span for one pipeline stage
func (pt *PipelineTracer) TraceStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("import.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage.name", stage)),
	)
}

// RecordStageCompletion closes out a stage span and records its duration
func (pt *PipelineTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stage string, duration time.Duration, items int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("stage.status", status),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
		attribute.Int("stage.items", items),
	)

	infrastructure.RecordStageMetrics(ctx, pt.metrics, stage, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "stage completed")
}

// RecordRowError adds a span event for a skipped row and counts it
func (pt *PipelineTracer) RecordRowError(ctx context.Context, row int, field string) {
	infrastructure.AddSpanEvent(ctx, "row.skipped", map[string]interface{}{
		"row":   row,
		"field": field,
	})
	if pt.metrics != nil {
		pt.metrics.RowErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
	}
}

// RecordResult adds the entity counts of a finished run
func (pt *PipelineTracer) RecordResult(ctx context.Context, r *Result) {
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"run.rows":          r.RowsRead,
		"run.rows_skipped":  r.RowsSkipped,
		"run.students":      r.Students.Len(),
		"run.groups":        r.Groups.Len(),
		"run.relationships": len(r.Relationships),
	})
	if pt.metrics == nil {
		return
	}
	pt.metrics.RowsRead.Add(ctx, int64(r.RowsRead))
	pt.metrics.StudentsImported.Add(ctx, int64(r.Students.Len()))
	pt.metrics.GroupsCreated.Add(ctx, int64(r.Groups.Len()))
	pt.metrics.Relationships.Add(ctx, int64(len(r.Relationships)))
}

// RecordRunCompletion sets the final status of the run span
func (pt *PipelineTracer) RecordRunCompletion(ctx context.Context, span trace.Span, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "import completed")
	}
	span.SetAttributes(attribute.String("run.status", status))
	infrastructure.RecordRunMetrics(ctx, pt.metrics, status)
}
