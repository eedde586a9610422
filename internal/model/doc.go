// Package model defines the data structures shared by the analyzers,
// the pipeline, the report writers and the HTTP surface.
//
//   - AnalysisReport: the full result for one page, serialized with the
//     Spanish keys the web view and the assistant consume
//   - ResourceRecord: one external stylesheet or script reference
//   - HeaderFindings: the CSP / XFO / HSTS audit
//   - Summary: a severity-ranked digest used by the text and Markdown writers
//
// Keeping them in their own package lets analyzer, pipeline and report
// depend on the types without importing each other.
package model
