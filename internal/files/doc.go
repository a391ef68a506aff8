// Package files provides table file discovery for the scan CLI.
//
// Discovery locates files the dataload loaders understand (CSV, TSV,
// XLSX, HTML) under a base directory, skipping spreadsheet lock files
// and dotfiles.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//
//	// Find every table file in the datasets directory
//	tableFiles, err := discovery.FindTableFiles("datasets", "")
//
//	// Restrict discovery to a name pattern
//	surveys, err := discovery.FindTableFiles("datasets", "survey_*.csv")
package files
