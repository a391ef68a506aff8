// Package dataload reads tabular sources into raw tables.
//
// Loaders exist for delimited text, Excel workbooks, HTML documents, and
// Google Sheets ranges. Every loader funnels its rows through the same
// pipeline: headers are cleaned and deduplicated, cell text matching the
// configured null tokens becomes a null cell, and each column receives the
// narrowest dtype that parses all of its values unless a type hint forces
// one. The output is a table.RawTable; deciding which present values are
// sentinels for missing data stays with the nullity classifier.
package dataload
