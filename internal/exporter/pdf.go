package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"datapulse/internal/pipeline"
)

// pdfPreviewGroups caps the aggregate preview in the report.
const pdfPreviewGroups = 10

// PDFExporter writes the end-of-run report document.
type PDFExporter struct {
	logger *slog.Logger
}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter(logger *slog.Logger) *PDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExporter{logger: logger}
}

// Export writes the report: the processing summary, a transformation note,
// the top aggregate groups, the AI analysis text, and the chart image when
// one was rendered.
func (e *PDFExporter) Export(report pipeline.Report, agg *pipeline.AggregateTable, analysis, chartPath, outputPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Data Processing & AI Report", "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "Cleaning Summary", "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Rows before: %d", report.RowsBefore),
		fmt.Sprintf("Rows after cleaning: %d", report.RowsAfterCleaning),
		fmt.Sprintf("Rows after transformations: %d", report.RowsAfterTransform),
		fmt.Sprintf("Removed duplicates: %d", report.RemovedDuplicates),
		fmt.Sprintf("Filled missing numeric: %d", report.FilledMissingNumeric),
		fmt.Sprintf("Filled missing text: %d", report.FilledMissingText),
		fmt.Sprintf("Removed invalid rows: %d", report.RemovedInvalidRows),
	} {
		pdf.CellFormat(0, 6, line, "", 1, "", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Transformations Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, "Created 'total' column, grouped and aggregated data, filtered non-positive totals, and sorted by total.", "", "", false)

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Top Grouped Data (Preview)", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	if agg != nil && len(agg.Rows) > 0 {
		pdf.MultiCell(0, 4, renderAggregatePreview(agg), "", "", false)
	} else {
		pdf.MultiCell(0, 4, "No grouped data available.", "", "", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "AI Analysis", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if analysis == "" {
		analysis = "No AI analysis available."
	}
	pdf.MultiCell(0, 5, analysis, "", "", false)

	if chartPath != "" {
		if _, err := os.Stat(chartPath); err == nil {
			pdf.AddPage()
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, "Visualization", "", 1, "", false, 0, "")
			pdf.ImageOptions(chartPath, 10, 30, 180, 0, false, fpdf.ImageOptions{}, 0, "")
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	e.logger.Info("PDF report exported", slog.String("output_path", outputPath))
	return nil
}

// renderAggregatePreview formats the first groups as fixed-order text lines.
func renderAggregatePreview(agg *pipeline.AggregateTable) string {
	out := fmt.Sprintf("%s | total_sales | avg_total | count_rows\n", agg.GroupColumn)
	for i, row := range agg.Rows {
		if i == pdfPreviewGroups {
			break
		}
		out += fmt.Sprintf("%s | %s | %s | %d\n",
			row.Key.String(), row.TotalSales.String(), row.AvgTotal.String(), row.CountRows)
	}
	return out
}
