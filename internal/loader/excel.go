package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"datapulse/internal/table"
)

// loadExcel reads the first sheet that contains data. Sheets are scanned in
// workbook order; a sheet qualifies when it has a non-empty first row to use
// as the header.
func loadExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if !hasContent(rows[0]) {
			continue
		}
		slog.Info("Found data sheet", slog.String("sheet_name", name), slog.Int("total_rows", len(rows)))
		return tableFromRows(rows[0], rows[1:])
	}

	return nil, fmt.Errorf("no sheet with data in workbook")
}

func hasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
