package domain

// Row is a single tabular record keyed by column name. Cell values stay
// strings until the feature pipeline parses them against the bundle schema.
type Row map[string]string

// Table is an ordered batch of rows. Column order is preserved from the
// uploaded CSV (or taken from the bundle manifest for JSON input) so that
// rendered and downloaded output keeps a stable shape.
type Table struct {
	Columns []string
	Rows    []Row
}

func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The predict pipeline augments a copy so the
// caller's table is never mutated.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		dup := make(Row, len(row))
		for k, v := range row {
			dup[k] = v
		}
		out.Rows[i] = dup
	}
	return out
}
