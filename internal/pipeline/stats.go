package pipeline

import (
	"sort"

	"datapulse/internal/table"
)

// median returns the median of vals; even-length inputs average the two
// middle elements. ok is false for an empty slice.
func median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

// mode returns the most frequent non-missing value; ties resolve to the
// value that appeared first. ok is false when every cell is missing.
func mode(cells []table.Value) (table.Value, bool) {
	type entry struct {
		value table.Value
		count int
	}
	var order []entry
	index := make(map[string]int)

	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		key := cellKey(c)
		if i, seen := index[key]; seen {
			order[i].count++
			continue
		}
		index[key] = len(order)
		order = append(order, entry{value: c, count: 1})
	}

	if len(order) == 0 {
		return table.Missing, false
	}
	best := 0
	for i := 1; i < len(order); i++ {
		if order[i].count > order[best].count {
			best = i
		}
	}
	return order[best].value, true
}

// cellKey builds a comparison key that keeps variants apart, so Text("1")
// never collides with Number(1).
func cellKey(v table.Value) string {
	switch v.Type() {
	case table.TypeNumber:
		return "n:" + v.String()
	case table.TypeText:
		return "t:" + v.Text()
	case table.TypeTimestamp:
		return "d:" + v.Time().Format("2006-01-02T15:04:05.000000000Z07:00")
	default:
		return "m:"
	}
}
