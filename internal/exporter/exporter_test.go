package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapulse/internal/pipeline"
	"datapulse/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.Column{
		{Name: "product", Kind: table.KindTextual, Cells: []table.Value{
			table.Text("widget"), table.Text("gadget"),
		}},
		{Name: "total", Kind: table.KindNumeric, Cells: []table.Value{
			table.Number(20.5), table.Missing,
		}},
	})
	require.NoError(t, err)
	return tbl
}

func sampleAggregates() *pipeline.AggregateTable {
	return &pipeline.AggregateTable{
		GroupColumn: "product",
		Rows: []pipeline.AggregateRow{
			{Key: table.Text("widget"), TotalSales: table.Number(30), AvgTotal: table.Number(15), CountRows: 2},
			{Key: table.Text("gadget"), TotalSales: table.Number(5), AvgTotal: table.Number(5), CountRows: 1},
		},
	}
}

func TestWriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := NewCSVWriter(nil).WriteTable(path, sampleTable(t), WriteOptions{})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"product", "total"}, records[0])
	assert.Equal(t, []string{"widget", "20.5"}, records[1])
	assert.Equal(t, []string{"gadget", ""}, records[2], "missing cells render empty")
}

func TestWriteTableBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := NewCSVWriter(nil).WriteTable(path, sampleTable(t), WriteOptions{BOMPrefix: true})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
}

func TestRenderBarChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "top.png")

	got, err := NewChartRenderer(nil, 10).RenderBarChart(sampleAggregates(), path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")))
}

func TestRenderBarChartEmptyAggregates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.png")

	got, err := NewChartRenderer(nil, 10).RenderBarChart(&pipeline.AggregateTable{}, path)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderBarChartTopN(t *testing.T) {
	agg := &pipeline.AggregateTable{GroupColumn: "product"}
	for i := 0; i < 30; i++ {
		agg.Rows = append(agg.Rows, pipeline.AggregateRow{
			Key:        table.Text(strings.Repeat("x", i+1)),
			TotalSales: table.Number(float64(i)),
			AvgTotal:   table.Number(float64(i)),
			CountRows:  1,
		})
	}
	path := filepath.Join(t.TempDir(), "top.png")

	got, err := NewChartRenderer(nil, 5).RenderBarChart(agg, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestExportPDF(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "reports", "report.pdf")

	chartPath := filepath.Join(dir, "top.png")
	_, err := NewChartRenderer(nil, 10).RenderBarChart(sampleAggregates(), chartPath)
	require.NoError(t, err)

	report := pipeline.Report{
		RowsBefore:           10,
		RowsAfterCleaning:    8,
		RowsAfterTransform:   7,
		RemovedDuplicates:    2,
		FilledMissingNumeric: 1,
	}

	err = NewPDFExporter(nil).Export(report, sampleAggregates(), "All totals look plausible.", chartPath, pdfPath)
	require.NoError(t, err)

	content, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	assert.Greater(t, len(content), 1000)
}

func TestExportPDFWithoutChartOrAnalysis(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "report.pdf")

	err := NewPDFExporter(nil).Export(pipeline.Report{}, nil, "", "", pdfPath)
	require.NoError(t, err)

	_, statErr := os.Stat(pdfPath)
	assert.NoError(t, statErr)
}

func TestRenderAggregatePreviewCapsGroups(t *testing.T) {
	agg := &pipeline.AggregateTable{GroupColumn: "product"}
	for i := 0; i < pdfPreviewGroups+5; i++ {
		agg.Rows = append(agg.Rows, pipeline.AggregateRow{
			Key: table.Text("g"), TotalSales: table.Number(1), AvgTotal: table.Number(1), CountRows: 1,
		})
	}

	preview := renderAggregatePreview(agg)
	assert.Equal(t, pdfPreviewGroups+1, strings.Count(preview, "\n"), "header plus capped data lines")
	assert.True(t, strings.HasPrefix(preview, "product | total_sales | avg_total | count_rows"))
}
