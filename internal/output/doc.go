// Package output renders findings reports.
//
// Three formats are supported:
//   - text: console output, one section per file (alias "console")
//   - markdown: the report file written by file delivery and dashboard export
//   - json: the full structured report
//
// Use [GetWriter] to obtain a [Writer] for a format, [Render] to produce a
// string, or [WriteReportFile] to write a timestamped report into a directory.
package output
