package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"datapulse/internal/errors"
	"datapulse/internal/table"
)

// numericCoercionThreshold is the fraction of cells that must parse as
// numbers before a non-numeric column is replaced by its coerced form.
const numericCoercionThreshold = 0.7

// timestampLayouts are tried in order when a date-named column is coerced.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// Cleaner applies the deterministic hygiene passes that turn a raw table
// into a typed, deduplicated, fully populated one.
type Cleaner struct {
	logger   *slog.Logger
	observer Observer
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default;
// a nil observer disables events.
func NewCleaner(logger *slog.Logger, observer Observer) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger, observer: observer}
}

// Clean runs the five cleaning passes in order: deduplication, missing-value
// imputation, standardization, invalid-row removal, and column renaming.
// Every pass degrades gracefully (failed coercions become Missing, absent
// modes fall back to "unknown"); the only failure mode is two source labels
// colliding after normalization.
func (c *Cleaner) Clean(ctx context.Context, t *table.Table) (*table.Table, CleaningFragment, error) {
	_ = ctx // the passes are bounded by table size and never block

	frag := CleaningFragment{RowsBefore: t.RowCount()}
	c.logger.Info("Cleaning started", slog.Int("rows", frag.RowsBefore), slog.Int("columns", t.ColumnCount()))

	cleaned := c.deduplicate(t, &frag)
	c.impute(cleaned, &frag)
	c.standardize(cleaned)
	cleaned = c.removeInvalidRows(cleaned, &frag)

	renamed, err := c.renameColumns(cleaned)
	if err != nil {
		return nil, CleaningFragment{}, err
	}

	frag.RowsAfterCleaning = renamed.RowCount()
	c.logger.Info("Cleaning complete",
		slog.Int("rows_before", frag.RowsBefore),
		slog.Int("rows_after", frag.RowsAfterCleaning),
		slog.Int("removed_duplicates", frag.RemovedDuplicates),
		slog.Int("removed_invalid_rows", frag.RemovedInvalidRows))

	return renamed, frag, nil
}

// deduplicate keeps the first occurrence of every distinct row, preserving
// input order.
func (c *Cleaner) deduplicate(t *table.Table, frag *CleaningFragment) *table.Table {
	seen := make(map[string]struct{}, t.RowCount())
	keep := make([]int, 0, t.RowCount())

	for i := 0; i < t.RowCount(); i++ {
		var sb strings.Builder
		for _, cell := range t.Row(i) {
			sb.WriteString(cellKey(cell))
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	frag.RemovedDuplicates = t.RowCount() - len(keep)
	emit(c.observer, "clean", "removed duplicate rows", map[string]any{"removed": frag.RemovedDuplicates})
	return t.SelectRows(keep)
}

// impute replaces Missing cells column by column: numeric columns with the
// column median, everything else with the first-seen mode or the literal
// "unknown" when the column has no values at all. Columns are independent;
// no column's imputation reads another's imputed values.
func (c *Cleaner) impute(t *table.Table, frag *CleaningFragment) {
	for j := range t.Columns {
		col := &t.Columns[j]
		missing := 0
		for _, cell := range col.Cells {
			if cell.IsMissing() {
				missing++
			}
		}
		if missing == 0 {
			continue
		}

		if col.Kind == table.KindNumeric {
			var present []float64
			for _, cell := range col.Cells {
				if f, ok := cell.AsNumber(); ok {
					present = append(present, f)
				}
			}
			med, ok := median(present)
			if !ok {
				// Column is entirely missing; there is no median to fill
				// with, so the cells stay missing and the count is untouched.
				continue
			}
			for i, cell := range col.Cells {
				if cell.IsMissing() {
					col.Cells[i] = table.Number(med)
				}
			}
			frag.FilledMissingNumeric += missing
			emit(c.observer, "clean", "filled missing numeric cells", map[string]any{
				"column": col.Name, "filled": missing, "median": med,
			})
			continue
		}

		fill, ok := mode(col.Cells)
		if !ok {
			fill = table.Text("unknown")
		}
		for i, cell := range col.Cells {
			if cell.IsMissing() {
				col.Cells[i] = fill
			}
		}
		frag.FilledMissingText += missing
		emit(c.observer, "clean", "filled missing text cells", map[string]any{
			"column": col.Name, "filled": missing, "fill": fill.String(),
		})
	}
}

// standardize coerces date-named columns to timestamps, lower-cases textual
// columns, and promotes non-numeric columns to numeric when enough cells
// parse. Failed coercions become Missing, never errors.
func (c *Cleaner) standardize(t *table.Table) {
	for j := range t.Columns {
		col := &t.Columns[j]

		if isDateName(col.Name) {
			for i, cell := range col.Cells {
				col.Cells[i] = parseTimestamp(cell)
			}
			col.Kind = table.InferKind(col.Cells)
		}

		if col.Kind == table.KindTextual {
			for i, cell := range col.Cells {
				if cell.Type() == table.TypeText {
					col.Cells[i] = table.Text(strings.ToLower(cell.Text()))
				}
			}
		}

		if col.Kind != table.KindNumeric && len(col.Cells) > 0 {
			coerced := make([]table.Value, len(col.Cells))
			parsed := 0
			for i, cell := range col.Cells {
				if f, ok := cell.AsNumber(); ok {
					coerced[i] = table.Number(f)
					parsed++
				} else {
					coerced[i] = table.Missing
				}
			}
			if float64(parsed)/float64(len(col.Cells)) > numericCoercionThreshold {
				col.Cells = coerced
				col.Kind = table.KindNumeric
				emit(c.observer, "clean", "coerced column to numeric", map[string]any{
					"column": col.Name, "parsed": parsed, "total": len(col.Cells),
				})
			}
		}
	}
	t.RefreshKinds()
}

// removeInvalidRows drops every row holding a strictly negative value in any
// numeric column. Runs after standardization so freshly coerced columns
// participate.
func (c *Cleaner) removeInvalidRows(t *table.Table, frag *CleaningFragment) *table.Table {
	keep := make([]int, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		valid := true
		for j := range t.Columns {
			if t.Columns[j].Kind != table.KindNumeric {
				continue
			}
			cell := t.Columns[j].Cells[i]
			if cell.Type() == table.TypeNumber && cell.Number() < 0 {
				valid = false
				break
			}
		}
		if valid {
			keep = append(keep, i)
		}
	}

	frag.RemovedInvalidRows = t.RowCount() - len(keep)
	emit(c.observer, "clean", "removed invalid rows", map[string]any{"removed": frag.RemovedInvalidRows})
	if frag.RemovedInvalidRows == 0 {
		return t
	}
	return t.SelectRows(keep)
}

// renameColumns applies Normalize to every label. Two distinct labels
// normalizing to the same identifier is the one unrecoverable cleaning
// failure.
func (c *Cleaner) renameColumns(t *table.Table) (*table.Table, error) {
	out := t.Clone()
	byNormalized := make(map[string]string, len(out.Columns))
	for j := range out.Columns {
		original := out.Columns[j].Name
		normalized := Normalize(original)
		if prior, dup := byNormalized[normalized]; dup {
			return nil, errors.DuplicateColumn(prior, original, normalized)
		}
		byNormalized[normalized] = original
		out.Columns[j].Name = normalized
	}
	emit(c.observer, "clean", "normalized column labels", map[string]any{"columns": len(out.Columns)})
	return out, nil
}

// isDateName reports whether a column label marks temporal content.
func isDateName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "date") ||
		strings.Contains(lower, "time") ||
		strings.Contains(lower, "timestamp")
}

// parseTimestamp coerces one cell to a timestamp; anything unparseable is
// Missing.
func parseTimestamp(cell table.Value) table.Value {
	switch cell.Type() {
	case table.TypeTimestamp:
		return cell
	case table.TypeText:
		raw := strings.TrimSpace(cell.Text())
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return table.Timestamp(ts)
			}
		}
		return table.Missing
	default:
		return table.Missing
	}
}
