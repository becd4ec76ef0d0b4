// Package exporter persists the entities of an import run.
//
// Exporter writes students, groups, student_groups and import_statistics as
// indented JSON and, when enabled, CSV mirrors with set-valued fields
// comma-joined. Files are written concurrently into a staging directory and
// renamed into place once all of them succeeded.
//
// CSVWriter is the low-level writer with optional UTF-8 BOM for Excel.
//
// Example usage:
//
//	exp := exporter.NewExporter(paths, exporter.Options{Formats: cfg.Export.Formats})
//	written, err := exp.Export(ctx, &exporter.Bundle{
//	    Students:      result.Students.All(),
//	    Groups:        result.Groups.Groups(),
//	    Relationships: result.Relationships,
//	    Statistics:    result.Statistics,
//	})
package exporter
