package ai

import (
	"math"

	"datapulse/internal/pipeline"
	"datapulse/internal/table"
)

// ColumnStats is the descriptive summary of one column, feeding the prompt.
type ColumnStats struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Distinct int     `json:"distinct"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Mean     float64 `json:"mean,omitempty"`
	Top      string  `json:"top,omitempty"`
}

// DescribeTable computes per-column descriptive statistics: count, missing,
// distinct for every column; min/max/mean for numeric ones; the most
// frequent value for the rest.
func DescribeTable(t *table.Table) []ColumnStats {
	stats := make([]ColumnStats, 0, t.ColumnCount())
	for _, col := range t.Columns {
		cs := ColumnStats{Name: col.Name, Kind: col.Kind.String()}

		distinct := make(map[string]struct{})
		counts := make(map[string]int)
		var best string
		var bestCount int
		sum, minV, maxV := 0.0, math.Inf(1), math.Inf(-1)
		numeric := 0

		for _, cell := range col.Cells {
			if cell.IsMissing() {
				cs.Missing++
				continue
			}
			cs.Count++
			key := cell.String()
			distinct[key] = struct{}{}
			counts[key]++
			if counts[key] > bestCount {
				best, bestCount = key, counts[key]
			}
			if f, ok := cell.AsNumber(); ok {
				numeric++
				sum += f
				minV = math.Min(minV, f)
				maxV = math.Max(maxV, f)
			}
		}

		cs.Distinct = len(distinct)
		if col.Kind == table.KindNumeric && numeric > 0 {
			cs.Min, cs.Max, cs.Mean = minV, maxV, sum/float64(numeric)
		} else {
			cs.Top = best
		}
		stats = append(stats, cs)
	}
	return stats
}

// SummaryRequest carries everything the prompt builder needs: a few sample
// rows, the descriptive stats, and a preview of the aggregates.
type SummaryRequest struct {
	SampleColumns []string
	SampleRows    [][]string
	Stats         []ColumnStats
	Aggregates    *pipeline.AggregateTable
}

// NewSummaryRequest assembles the request from the transformed table and its
// aggregates, sampling the first sampleRows rows.
func NewSummaryRequest(t *table.Table, agg *pipeline.AggregateTable, sampleRows int) SummaryRequest {
	req := SummaryRequest{
		SampleColumns: t.Names(),
		Stats:         DescribeTable(t),
		Aggregates:    agg,
	}
	n := t.RowCount()
	if n > sampleRows {
		n = sampleRows
	}
	for i := 0; i < n; i++ {
		row := t.Row(i)
		rendered := make([]string, len(row))
		for j, cell := range row {
			rendered[j] = cell.String()
		}
		req.SampleRows = append(req.SampleRows, rendered)
	}
	return req
}
