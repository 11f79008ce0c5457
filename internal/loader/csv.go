package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"datapulse/internal/table"
)

// loadCSV reads a delimited text file. The first record is the header row.
// A UTF-8 BOM is stripped so Excel-exported files round-trip.
func loadCSV(path string) (*table.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // tolerate ragged rows, tableFromRows pads

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return tableFromRows(nil, nil)
	}

	return tableFromRows(records[0], records[1:])
}
