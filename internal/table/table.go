package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind classifies the values a column predominantly holds. It is inferred
// from the data rather than declared, and is recomputed at stage boundaries
// because coercion can change it.
type Kind int

const (
	KindTextual Kind = iota
	KindNumeric
	KindTemporal
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTemporal:
		return "temporal"
	default:
		return "textual"
	}
}

// ValueType identifies which variant a Value holds.
type ValueType int

const (
	TypeMissing ValueType = iota
	TypeNumber
	TypeText
	TypeTimestamp
)

// Value is a single cell. The zero value is Missing.
type Value struct {
	typ  ValueType
	num  float64
	text string
	ts   time.Time
}

// Missing is the absent-cell sentinel.
var Missing = Value{}

// Number creates a numeric cell value.
func Number(f float64) Value {
	return Value{typ: TypeNumber, num: f}
}

// Text creates a textual cell value.
func Text(s string) Value {
	return Value{typ: TypeText, text: s}
}

// Timestamp creates a temporal cell value.
func Timestamp(t time.Time) Value {
	return Value{typ: TypeTimestamp, ts: t}
}

// Type returns the variant held by the value.
func (v Value) Type() ValueType { return v.typ }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return v.typ == TypeMissing }

// Number returns the numeric payload; zero when the value is not a number.
func (v Value) Number() float64 { return v.num }

// Text returns the textual payload; empty when the value is not text.
func (v Value) Text() string { return v.text }

// Time returns the temporal payload; zero when the value is not a timestamp.
func (v Value) Time() time.Time { return v.ts }

// AsNumber attempts to view the value as a number. Numbers convert directly,
// text converts when it parses as a float (thousands separators tolerated),
// everything else fails.
func (v Value) AsNumber() (float64, bool) {
	switch v.typ {
	case TypeNumber:
		return v.num, true
	case TypeText:
		f, err := strconv.ParseFloat(stripCommas(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Equal reports value equality across variants. Missing equals Missing.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeNumber:
		return v.num == o.num
	case TypeText:
		return v.text == o.text
	case TypeTimestamp:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// String renders the cell for export. Missing renders as the empty string
// and numbers drop a trailing ".0" the way spreadsheet tools do.
func (v Value) String() string {
	switch v.typ {
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TypeText:
		return v.text
	case TypeTimestamp:
		return v.ts.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// MarshalJSON renders cells as JSON primitives: Missing as null, numbers as
// numbers, text as strings, timestamps as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNumber:
		return json.Marshal(v.num)
	case TypeText:
		return json.Marshal(v.text)
	case TypeTimestamp:
		return json.Marshal(v.ts.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the same shapes MarshalJSON emits.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		*v = Timestamp(ts)
		return nil
	}
	*v = Text(s)
	return nil
}

func stripCommas(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Column is an ordered sequence of cells under a name, tagged with its
// inferred kind.
type Column struct {
	Name  string  `json:"name"`
	Kind  Kind    `json:"kind"`
	Cells []Value `json:"cells"`
}

// InferKind classifies cells by majority vote over the non-missing ones.
// A column with no non-missing cells is textual.
func InferKind(cells []Value) Kind {
	var num, txt, tmp int
	for _, c := range cells {
		switch c.Type() {
		case TypeNumber:
			num++
		case TypeText:
			txt++
		case TypeTimestamp:
			tmp++
		}
	}
	if num == 0 && txt == 0 && tmp == 0 {
		return KindTextual
	}
	if num >= txt && num >= tmp {
		return KindNumeric
	}
	if tmp >= txt {
		return KindTemporal
	}
	return KindTextual
}

// Table is an ordered set of uniquely named columns with row-aligned cells.
// Stages never mutate a table in place; each stage yields a new value.
type Table struct {
	Columns []Column `json:"columns"`
}

// New builds a table from columns, validating alignment and name uniqueness.
func New(columns []Column) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	rows := -1
	for _, col := range columns {
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name: %s", col.Name)
		}
		seen[col.Name] = struct{}{}
		if rows == -1 {
			rows = len(col.Cells)
		} else if len(col.Cells) != rows {
			return nil, fmt.Errorf("column %s has %d cells, want %d", col.Name, len(col.Cells), rows)
		}
	}
	return &Table{Columns: columns}, nil
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.Columns) }

// Column returns a pointer to the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j := range t.Columns {
		row[j] = t.Columns[j].Cells[i]
	}
	return row
}

// SelectRows builds a new table keeping only the given row indices, in the
// order given. Kinds are re-inferred on the result.
func (t *Table) SelectRows(keep []int) *Table {
	cols := make([]Column, len(t.Columns))
	for j, src := range t.Columns {
		cells := make([]Value, len(keep))
		for i, idx := range keep {
			cells[i] = src.Cells[idx]
		}
		cols[j] = Column{Name: src.Name, Kind: InferKind(cells), Cells: cells}
	}
	return &Table{Columns: cols}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.Columns))
	for j, src := range t.Columns {
		cells := make([]Value, len(src.Cells))
		copy(cells, src.Cells)
		cols[j] = Column{Name: src.Name, Kind: src.Kind, Cells: cells}
	}
	return &Table{Columns: cols}
}

// AppendColumn adds a column; its cell count must match the current row
// count unless the table is empty.
func (t *Table) AppendColumn(col Column) error {
	if len(t.Columns) > 0 && len(col.Cells) != t.RowCount() {
		return fmt.Errorf("column %s has %d cells, want %d", col.Name, len(col.Cells), t.RowCount())
	}
	if t.Column(col.Name) != nil {
		return fmt.Errorf("duplicate column name: %s", col.Name)
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// RefreshKinds recomputes every column's kind from its current cells.
func (t *Table) RefreshKinds() {
	for i := range t.Columns {
		t.Columns[i].Kind = InferKind(t.Columns[i].Cells)
	}
}
