// Package http serves the results of a pipeline run over a read-only JSON
// API: the processing report, the aggregate table, a bounded preview of the
// transformed rows, the stage-event trace, plus health and Prometheus
// metrics endpoints.
package http
