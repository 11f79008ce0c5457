package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"datapulse/internal/pipeline"
)

// ChartRenderer draws the top-groups bar chart.
type ChartRenderer struct {
	logger *slog.Logger
	topN   int
}

// NewChartRenderer creates a renderer that charts the top n groups by
// total sales.
func NewChartRenderer(logger *slog.Logger, topN int) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if topN <= 0 {
		topN = 10
	}
	return &ChartRenderer{logger: logger, topN: topN}
}

// RenderBarChart writes a PNG bar chart of the top groups by total_sales.
// An empty aggregate table skips rendering and returns an empty path, which
// callers treat as "no chart", not an error.
func (r *ChartRenderer) RenderBarChart(agg *pipeline.AggregateTable, chartPath string) (string, error) {
	if agg == nil || len(agg.Rows) == 0 {
		r.logger.Warn("Grouped data is empty, skipping chart generation")
		return "", nil
	}

	rows := make([]pipeline.AggregateRow, len(agg.Rows))
	copy(rows, agg.Rows)
	sort.SliceStable(rows, func(a, b int) bool {
		va, _ := rows[a].TotalSales.AsNumber()
		vb, _ := rows[b].TotalSales.AsNumber()
		return va > vb
	})
	if len(rows) > r.topN {
		rows = rows[:r.topN]
	}

	bars := make([]chart.Value, len(rows))
	for i, row := range rows {
		v, _ := row.TotalSales.AsNumber()
		label := row.Key.String()
		if label == "" {
			label = "(missing)"
		}
		bars[i] = chart.Value{Value: v, Label: label}
	}

	graph := chart.BarChart{
		Title:    "Top Items by Total Sales",
		Width:    1024,
		Height:   614,
		BarWidth: 48,
		XAxis:    chart.Style{TextRotationDegrees: 45},
		Bars:     bars,
	}

	if err := os.MkdirAll(filepath.Dir(chartPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(chartPath)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	r.logger.Info("Visualization saved", slog.String("chart_path", chartPath), slog.Int("bars", len(bars)))
	return chartPath, nil
}
