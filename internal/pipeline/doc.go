// Package pipeline drives one page analysis through its states.
//
// An analysis moves Idle → Fetching → Parsing → ExtractingResources →
// Analyzing → Assembled, or to Failed from any working state. Each
// transition is owned by one Step; the Pipeline runs the steps in order
// over a shared Run and records the state reached. A failed run never
// yields a partial report.
//
// Sub-resource downloads inside ExtractingResources run concurrently with
// errgroup, bounded by a worker limit, and land in index-addressed slots so
// the report keeps document order. BatchProcessor applies the same
// bounded concurrency to several targets.
package pipeline
