package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"datapulse/internal/table"
)

// TotalColumn is the name of the derived measure column.
const TotalColumn = "total"

var (
	priceCandidates    = []string{"price", "unit_price"}
	quantityCandidates = []string{"quantity", "qty"}
	groupCandidates    = []string{"product", "item", "category"}
)

// AggregateRow is one group of the aggregate table.
type AggregateRow struct {
	Key        table.Value `json:"key"`
	TotalSales table.Value `json:"total_sales"`
	AvgTotal   table.Value `json:"avg_total"`
	CountRows  int         `json:"count_rows"`
}

// AggregateTable is the grouped summary derived from the total column. It is
// created fresh each run and never mutated afterwards.
type AggregateTable struct {
	GroupColumn string         `json:"group_column"`
	Rows        []AggregateRow `json:"rows"`
}

// Transformer derives the total column, groups and aggregates, filters, and
// sorts the cleaned table.
type Transformer struct {
	logger   *slog.Logger
	observer Observer
}

// NewTransformer creates a transformer. A nil logger falls back to
// slog.Default; a nil observer disables events.
func NewTransformer(logger *slog.Logger, observer Observer) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger, observer: observer}
}

// Transform runs the transformation passes on a cleaned table: derive total
// (price × quantity, or the constant 1 when either column is absent), group
// by the first present candidate column (falling back to the table's first
// column), aggregate per group, drop rows whose total is not positive, and
// stable-sort the survivors by total descending. Absent columns only change
// which fallback executes; there are no error paths.
func (tr *Transformer) Transform(ctx context.Context, t *table.Table) (*table.Table, *AggregateTable, TransformFragment, error) {
	_ = ctx // bounded by table size, nothing blocks

	tr.logger.Info("Transformations started", slog.Int("rows", t.RowCount()))

	out := t.Clone()
	tr.deriveTotal(out)
	aggregates := tr.aggregate(out)
	out = tr.filterAndSort(out)

	frag := TransformFragment{RowsAfterTransform: out.RowCount()}
	tr.logger.Info("Transformations complete",
		slog.Int("rows_after", frag.RowsAfterTransform),
		slog.String("group_column", aggregates.GroupColumn),
		slog.Int("groups", len(aggregates.Rows)))

	return out, aggregates, frag, nil
}

// deriveTotal appends the total column: price × quantity per row when both
// columns exist, otherwise the constant 1.
func (tr *Transformer) deriveTotal(t *table.Table) {
	price := firstPresent(t, priceCandidates)
	qty := firstPresent(t, quantityCandidates)

	cells := make([]table.Value, t.RowCount())
	if price != nil && qty != nil {
		for i := range cells {
			p, _ := price.Cells[i].AsNumber()
			q, _ := qty.Cells[i].AsNumber()
			cells[i] = table.Number(p * q)
		}
		emit(tr.observer, "transform", "derived total column", map[string]any{
			"price_column": price.Name, "quantity_column": qty.Name,
		})
	} else {
		for i := range cells {
			cells[i] = table.Number(1)
		}
		emit(tr.observer, "transform", "derived total column from fallback", map[string]any{
			"have_price": price != nil, "have_quantity": qty != nil,
		})
	}

	// The cleaned table cannot already contain a total column unless the
	// source data had one; replace it in that case rather than erroring.
	if existing := t.Column(TotalColumn); existing != nil {
		existing.Kind = table.KindNumeric
		existing.Cells = cells
		return
	}
	_ = t.AppendColumn(table.Column{Name: TotalColumn, Kind: table.KindNumeric, Cells: cells})
}

// aggregate groups rows by the grouping column and computes total_sales,
// avg_total, and count_rows per group, emitting groups in first-seen order.
func (tr *Transformer) aggregate(t *table.Table) *AggregateTable {
	group := firstPresent(t, groupCandidates)
	if group == nil && len(t.Columns) > 0 {
		group = &t.Columns[0]
	}

	agg := &AggregateTable{}
	if group == nil {
		return agg
	}
	agg.GroupColumn = group.Name

	total := t.Column(TotalColumn)
	type bucket struct {
		key   table.Value
		sum   float64
		count int
	}
	var order []*bucket
	index := make(map[string]*bucket)

	for i := 0; i < t.RowCount(); i++ {
		key := group.Cells[i]
		b, seen := index[cellKey(key)]
		if !seen {
			b = &bucket{key: key}
			index[cellKey(key)] = b
			order = append(order, b)
		}
		v, _ := total.Cells[i].AsNumber()
		b.sum += v
		b.count++
	}

	agg.Rows = make([]AggregateRow, len(order))
	for i, b := range order {
		agg.Rows[i] = AggregateRow{
			Key:        b.key,
			TotalSales: table.Number(b.sum),
			AvgTotal:   table.Number(b.sum / float64(b.count)),
			CountRows:  b.count,
		}
	}

	coerceAggregates(agg)
	emit(tr.observer, "transform", "aggregated by group column", map[string]any{
		"group_column": agg.GroupColumn, "groups": len(agg.Rows),
	})
	return agg
}

// coerceAggregates ensures the measure cells are numeric; anything that does
// not view as a number becomes Missing rather than failing.
func coerceAggregates(agg *AggregateTable) {
	for i := range agg.Rows {
		if f, ok := agg.Rows[i].TotalSales.AsNumber(); ok {
			agg.Rows[i].TotalSales = table.Number(f)
		} else {
			agg.Rows[i].TotalSales = table.Missing
		}
		if f, ok := agg.Rows[i].AvgTotal.AsNumber(); ok {
			agg.Rows[i].AvgTotal = table.Number(f)
		} else {
			agg.Rows[i].AvgTotal = table.Missing
		}
	}
}

// filterAndSort drops rows whose total is not strictly positive and sorts
// the remainder by total descending. The sort is stable: equal totals keep
// their prior relative order.
func (tr *Transformer) filterAndSort(t *table.Table) *table.Table {
	total := t.Column(TotalColumn)

	keep := make([]int, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		if v, ok := total.Cells[i].AsNumber(); ok && v > 0 {
			keep = append(keep, i)
		}
	}

	sort.SliceStable(keep, func(a, b int) bool {
		va, _ := total.Cells[keep[a]].AsNumber()
		vb, _ := total.Cells[keep[b]].AsNumber()
		return va > vb
	})

	emit(tr.observer, "transform", "filtered and sorted by total", map[string]any{"rows": len(keep)})
	return t.SelectRows(keep)
}

// firstPresent returns the first candidate column present in the table,
// trying candidates in priority order with exact name matches.
func firstPresent(t *table.Table, candidates []string) *table.Column {
	for _, name := range candidates {
		if col := t.Column(name); col != nil {
			return col
		}
	}
	return nil
}
