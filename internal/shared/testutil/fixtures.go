package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"datapulse/internal/table"
)

// MustTable builds a table from column definitions, failing the test on
// ragged or duplicate input.
func MustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	for i := range cols {
		cols[i].Kind = table.InferKind(cols[i].Cells)
	}
	tbl, err := table.New(cols)
	require.NoError(t, err)
	return tbl
}

// Numbers builds a cell slice from floats.
func Numbers(vals ...float64) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		out[i] = table.Number(v)
	}
	return out
}

// Texts builds a cell slice from strings; empty strings become Missing.
func Texts(vals ...string) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		if v == "" {
			out[i] = table.Missing
		} else {
			out[i] = table.Text(v)
		}
	}
	return out
}

// SalesTable is the canonical fixture: product, price, quantity with the
// hygiene problems the cleaner is built for.
func SalesTable(t *testing.T) *table.Table {
	t.Helper()
	return MustTable(t,
		table.Column{Name: "Product", Cells: Texts("Widget", "Widget", "Gadget", "Sprocket")},
		table.Column{Name: "Unit  Price!", Cells: []table.Value{
			table.Number(10), table.Number(10), table.Missing, table.Number(5),
		}},
		table.Column{Name: "Quantity", Cells: Numbers(2, 2, 3, 4)},
	)
}
