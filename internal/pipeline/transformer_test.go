package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapulse/internal/table"
)

func TestTransformDerivesTotal(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("x"), table.Text("y")}},
		table.Column{Name: "price", Cells: []table.Value{table.Number(10), table.Number(5)}},
		table.Column{Name: "quantity", Cells: []table.Value{table.Number(2), table.Number(4)}},
	)

	out, _, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	total := out.Column(TotalColumn)
	require.NotNil(t, total)
	// rows are sorted by total descending: 20 for both, stable order
	assert.Equal(t, []table.Value{table.Number(20), table.Number(20)}, total.Cells)
}

func TestTransformTotalFallsBackToOne(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "name", Cells: []table.Value{table.Text("a"), table.Text("b"), table.Text("c")}},
	)

	out, _, frag, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	total := out.Column(TotalColumn)
	require.NotNil(t, total)
	for _, cell := range total.Cells {
		assert.Equal(t, table.Number(1), cell)
	}
	assert.Equal(t, 3, frag.RowsAfterTransform)
}

func TestTransformUnparseablePriceCountsAsZero(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "price", Cells: []table.Value{table.Text("junk"), table.Number(3)}},
		table.Column{Name: "qty", Cells: []table.Value{table.Number(5), table.Number(2)}},
	)

	out, _, frag, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	// junk price multiplies as zero, so that row's total is filtered out
	assert.Equal(t, 1, frag.RowsAfterTransform)
	assert.Equal(t, []table.Value{table.Number(6)}, out.Column(TotalColumn).Cells)
}

func TestTransformAggregation(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("x"), table.Text("x"), table.Text("y")}},
		table.Column{Name: "price", Cells: []table.Value{table.Number(10), table.Number(20), table.Number(5)}},
		table.Column{Name: "quantity", Cells: []table.Value{table.Number(1), table.Number(1), table.Number(1)}},
	)

	_, agg, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	require.Equal(t, "product", agg.GroupColumn)
	require.Len(t, agg.Rows, 2)

	assert.True(t, table.Text("x").Equal(agg.Rows[0].Key))
	assert.Equal(t, table.Number(30), agg.Rows[0].TotalSales)
	assert.Equal(t, table.Number(15), agg.Rows[0].AvgTotal)
	assert.Equal(t, 2, agg.Rows[0].CountRows)

	assert.True(t, table.Text("y").Equal(agg.Rows[1].Key))
	assert.Equal(t, table.Number(5), agg.Rows[1].TotalSales)
	assert.Equal(t, table.Number(5), agg.Rows[1].AvgTotal)
	assert.Equal(t, 1, agg.Rows[1].CountRows)
}

func TestTransformGroupColumnPriority(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{name: "product wins", columns: []string{"category", "product", "item"}, want: "product"},
		{name: "item before category", columns: []string{"category", "item"}, want: "item"},
		{name: "category alone", columns: []string{"category", "other"}, want: "category"},
		{name: "fallback to first column", columns: []string{"region", "other"}, want: "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := make([]table.Column, len(tt.columns))
			for i, name := range tt.columns {
				cols[i] = table.Column{Name: name, Cells: []table.Value{table.Text("v")}}
			}
			tbl := mustTable(t, cols...)

			_, agg, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, agg.GroupColumn)
		})
	}
}

func TestTransformMissingGroupKeyFormsOwnGroup(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("x"), table.Missing, table.Missing}},
	)

	_, agg, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	require.Len(t, agg.Rows, 2)
	assert.True(t, agg.Rows[1].Key.IsMissing())
	assert.Equal(t, 2, agg.Rows[1].CountRows)
}

func TestTransformFiltersNonPositiveTotals(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("a"), table.Text("b"), table.Text("c")}},
		table.Column{Name: "price", Cells: []table.Value{table.Number(0), table.Number(10), table.Number(2)}},
		table.Column{Name: "qty", Cells: []table.Value{table.Number(5), table.Number(1), table.Number(0)}},
	)

	out, agg, frag, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	// only b survives the filter, but the aggregate keeps every group
	assert.Equal(t, 1, frag.RowsAfterTransform)
	assert.Equal(t, 1, out.RowCount())
	assert.Len(t, agg.Rows, 3)
}

func TestTransformSortStability(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("a"), table.Text("b"), table.Text("c")}},
		table.Column{Name: "price", Cells: []table.Value{table.Number(5), table.Number(5), table.Number(10)}},
		table.Column{Name: "quantity", Cells: []table.Value{table.Number(1), table.Number(1), table.Number(1)}},
	)

	out, _, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	names := out.Column("product").Cells
	// c has the highest total; a and b tie and keep their relative order
	assert.Equal(t, []table.Value{table.Text("c"), table.Text("a"), table.Text("b")}, names)
}

func TestTransformDeterministicAggregateOrder(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{
			table.Text("beta"), table.Text("alpha"), table.Text("beta"), table.Text("gamma"),
		}},
	)

	var firstOrder []string
	for i := 0; i < 5; i++ {
		_, agg, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
		require.NoError(t, err)
		order := make([]string, len(agg.Rows))
		for j, row := range agg.Rows {
			order[j] = row.Key.Text()
		}
		if i == 0 {
			firstOrder = order
			assert.Equal(t, []string{"beta", "alpha", "gamma"}, order)
		} else {
			assert.Equal(t, firstOrder, order)
		}
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "product", Cells: []table.Value{table.Text("x")}},
	)

	_, _, _, err := NewTransformer(nil, nil).Transform(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.ColumnCount())
	assert.Nil(t, tbl.Column(TotalColumn))
}

func TestMergeReports(t *testing.T) {
	report := MergeReports(
		CleaningFragment{
			RowsBefore:           10,
			RowsAfterCleaning:    7,
			RemovedDuplicates:    2,
			FilledMissingNumeric: 3,
			FilledMissingText:    1,
			RemovedInvalidRows:   1,
		},
		TransformFragment{RowsAfterTransform: 6},
	)

	assert.Equal(t, 10, report.RowsBefore)
	assert.Equal(t, 7, report.RowsAfterCleaning)
	assert.Equal(t, 6, report.RowsAfterTransform)
	assert.Equal(t, 2, report.RemovedDuplicates)
	assert.Equal(t, 3, report.FilledMissingNumeric)
	assert.Equal(t, 1, report.FilledMissingText)
	assert.Equal(t, 1, report.RemovedInvalidRows)
}
