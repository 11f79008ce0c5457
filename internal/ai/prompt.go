package ai

import (
	"fmt"
	"strings"
)

// maxPreviewGroups caps how many aggregate rows go into the prompt.
const maxPreviewGroups = 20

// BuildPrompt renders the analysis request the remote model receives:
// instructions, the sample rows, the descriptive stats, and the top groups,
// each as a pipe-delimited text table.
func BuildPrompt(req SummaryRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a data analyst. I will provide a dataset and some aggregated statistics.\n")
	sb.WriteString("Generate a concise professional report that includes:\n")
	sb.WriteString("- A high-level dataset summary\n")
	sb.WriteString("- Key patterns or insights\n")
	sb.WriteString("- Any anomalies or data quality issues you notice\n")
	sb.WriteString("- Business recommendations based on the grouped/aggregated data\n\n")

	sb.WriteString("Dataset head (first rows):\n")
	writeRow(&sb, req.SampleColumns)
	for _, row := range req.SampleRows {
		writeRow(&sb, row)
	}

	sb.WriteString("\nColumn statistics:\n")
	writeRow(&sb, []string{"column", "kind", "count", "missing", "distinct", "min", "max", "mean", "top"})
	for _, s := range req.Stats {
		writeRow(&sb, []string{
			s.Name, s.Kind,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%d", s.Missing),
			fmt.Sprintf("%d", s.Distinct),
			trimFloat(s.Min), trimFloat(s.Max), trimFloat(s.Mean),
			s.Top,
		})
	}

	if req.Aggregates != nil && len(req.Aggregates.Rows) > 0 {
		sb.WriteString("\nGrouped / aggregated data (top groups):\n")
		writeRow(&sb, []string{req.Aggregates.GroupColumn, "total_sales", "avg_total", "count_rows"})
		for i, row := range req.Aggregates.Rows {
			if i == maxPreviewGroups {
				break
			}
			writeRow(&sb, []string{
				row.Key.String(),
				row.TotalSales.String(),
				row.AvgTotal.String(),
				fmt.Sprintf("%d", row.CountRows),
			})
		}
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| ")
	sb.WriteString(strings.Join(cells, " | "))
	sb.WriteString(" |\n")
}

func trimFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%g", f)
}
