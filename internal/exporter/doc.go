// Package exporter writes a run's cleaned datasets and report to files.
//
// CSVWriter is the core CSV writer, with optional UTF-8 BOM for spreadsheet
// tools. CleanedExporter writes cleaned_<entity>.csv per dataset, and
// WorkbookExporter writes the report blocks plus cleaned datasets into a
// single .xlsx workbook.
//
// Example usage:
//
//	paths, err := exporter.NewCleanedExporter("out", logger).Export(ctx, cleaned)
//
//	err = exporter.NewWorkbookExporter("out/report.xlsx", logger).Export(ctx, report, cleaned)
package exporter
