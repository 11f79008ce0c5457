// Package exporter holds the presentation adapters that persist a run's
// results: the cleaned-table CSV writer, the top-groups bar chart renderer,
// and the PDF report exporter. Adapters consume the pipeline's outputs
// read-only and are independent of each other; a failure in one never
// invalidates the computed data or the other sinks.
package exporter
