package dataprocessing

import (
	"log/slog"
	"time"

	"floxcli/internal/config"
	"floxcli/pkg/contracts/domain"
)

// Pipeline stage names used in spans, metrics and cancellation errors
const (
	StageStudents      = "students"
	StageGroups        = "groups"
	StageRelationships = "relationships"
	StageStatistics    = "statistics"
)

// ProcessingOptions configures a Processor
type ProcessingOptions struct {
	// LargestGroupsLimit caps the largest_groups statistic
	LargestGroupsLimit int

	// Now stamps created_at and enrolled_at; time.Now when nil
	Now func() time.Time

	// Rules overrides the category table; CategoryRules when nil
	Rules []CategoryRule

	Logger *slog.Logger
	Tracer *PipelineTracer
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		LargestGroupsLimit: config.DefaultLargestGroupsLimit,
		Now:                time.Now,
		Rules:              CategoryRules,
	}
}

// Result holds the three collections and the statistics of one run
type Result struct {
	Students      *domain.StudentSet
	Groups        *GroupIndex
	Relationships []domain.StudentGroup
	Statistics    *domain.ImportStatistics

	RowsRead          int
	RowsSkipped       int
	DuplicateStudents int
	RowErrors         []*StudentBuildError
}
