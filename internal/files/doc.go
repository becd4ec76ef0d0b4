// Package files locates import sources on disk.
//
// When the configured input is a directory, ResolveSource picks the most
// recently modified file whose extension the importer supports:
//
//	path, err := files.ResolveSource("/data/exports")
//	// path is now e.g. /data/exports/persons-2024-10.xlsx
package files
