// Package app orchestrates a full pipeline run: load the input table, clean
// it, persist the cleaned CSV, transform and aggregate, then fan the
// presentation adapters (chart, AI analysis, PDF) out in parallel. The core
// results are computed before any adapter runs, and adapter failures never
// invalidate them.
package app
