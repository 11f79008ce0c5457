package loader

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"datapulse/internal/errors"
	"datapulse/internal/table"
)

// Format identifies a recognized input format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// DetectFormat maps a file extension to a recognized format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xls", ".xlsx":
		return FormatExcel, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.UnsupportedFormat(filepath.Ext(path))
	}
}

// Load reads a tabular file into a Table, inferring per-cell primitive
// types. The returned table is the raw input; all hygiene is the cleaner's
// job. Fails with ErrMissingInput when the path does not exist and
// ErrUnsupportedFormat for unrecognized extensions.
func Load(path string) (*table.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		return nil, errors.MissingInput(path, statErr)
	}

	slog.Info("Loading dataset",
		slog.String("path", path),
		slog.String("format", string(format)))

	switch format {
	case FormatCSV:
		return loadCSV(path)
	case FormatExcel:
		return loadExcel(path)
	default:
		return loadJSON(path)
	}
}

// inferCell turns a raw string cell into a typed value. Empty cells and the
// usual NA spellings are Missing; values that parse as floats (thousands
// separators tolerated) are numbers; everything else stays text.
func inferCell(raw string) table.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return table.Missing
	}
	switch strings.ToLower(trimmed) {
	case "na", "n/a", "nan", "null":
		return table.Missing
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
		return table.Number(f)
	}
	return table.Text(trimmed)
}

// tableFromRows builds a table from a header row plus data rows. Short rows
// are padded with Missing so columns stay aligned; extra cells beyond the
// header are dropped.
func tableFromRows(header []string, rows [][]string) (*table.Table, error) {
	if len(header) == 0 {
		return nil, errors.ErrEmptyTable
	}

	cols := make([]table.Column, len(header))
	for j, name := range header {
		cells := make([]table.Value, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = inferCell(row[j])
			} else {
				cells[i] = table.Missing
			}
		}
		cols[j] = table.Column{Name: strings.TrimSpace(name), Kind: table.InferKind(cells), Cells: cells}
	}

	return table.New(cols)
}
