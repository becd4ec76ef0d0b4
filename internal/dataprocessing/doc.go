// Package dataprocessing turns an ingested table into the students, groups and
// enrollment edges of one import run, and summarizes them.
//
// # Architecture
//
// The package is organized into four stages, run in order by the Processor:
//
// 1. Builder: converts each row into a Student, isolating per-row failures
// 2. Extractor: tokenizes the groups column and registers deduplicated groups
// 3. Relationships: links students and groups in both directions
// 4. Statistics: read-only summary of the finished collections
//
// # Usage
//
//	table, err := ingest.Import(ctx, "Flox_persons.xlsx", ingest.Options{})
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.NewProcessor(dataprocessing.DefaultOptions()).Run(ctx, table)
//
// # Group identity
//
// Group names are the exact trimmed token text. Distinct names are sorted
// byte-wise and numbered from 1, so the same input always yields the same ids.
// Categories come from the ordered CategoryRules table; the first matching
// rule wins and KURZ is the fallback.
//
// # Error Handling
//
// Rows that cannot become a Student produce a *StudentBuildError and are
// skipped. Extraction and statistics never fail. A cancelled context aborts
// the run between stages with a CANCELLED application error.
package dataprocessing
