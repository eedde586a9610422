// Package report writes analysis results for people and tools.
//
// Writers:
//   - SimpleWriter: colored terminal text (fatih/color)
//   - JSONWriter: the report with its Spanish wire keys, or a summary
//   - FullJSONWriter: report plus summary and tool version
//   - MarkdownWriter: shareable Markdown (nao1215/markdown)
//
// All writers implement Writer and can be combined with MultiWriter.
package report
