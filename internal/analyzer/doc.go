// Package analyzer computes the per-page report sections.
//
// Each analyzer reads the parsed document, the fetched resource records or
// the response headers from an Input and fills exactly one section of a
// model.AnalysisReport. Analyzers are independent of each other; the
// Coordinator runs them in registration order and stops at the first
// failure, converting panics into errors.
package analyzer
