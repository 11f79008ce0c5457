// Package pipeline implements the data cleaning and transformation core.
//
// # Architecture
//
// The package is organized around two stage types plus the audit plumbing
// they share:
//
// 1. Cleaner: deduplicates, imputes missing values, standardizes types and
// case, removes invalid rows, and normalizes column labels
// 2. Transformer: derives the total column, groups and aggregates, filters,
// and sorts
// 3. Report fragments and the Observer event stream record what each stage
// changed
//
// # Data Flow
//
// The typical flow through this package:
//
//	raw Table → Cleaner → cleaned Table + CleaningFragment
//	          → Transformer → transformed Table + AggregateTable + TransformFragment
//	          → MergeReports → Report
//
// # Error Handling
//
// The stages are total: unparseable coercions become Missing, absent
// expected columns select a documented fallback, and degenerate inputs
// (empty tables, all-missing columns) pass through. The single hard failure
// is two source labels normalizing to the same identifier, which Clean
// rejects so a corrupted table shape never propagates.
//
// # Determinism
//
// Given identical input, every pass produces identical output: dedup keeps
// first occurrences in input order, ties in mode selection resolve to first
// appearance, aggregate groups are emitted in first-seen order, and the
// final sort is stable.
package pipeline
