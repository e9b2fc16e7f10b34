package table

import "fmt"

// Column is a named, ordered sequence of values.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered sequence of equal-length named columns.
// Tables are append-only while being built and treated as read-only
// afterwards; the evaluator never mutates them.
type Table struct {
	cols  []Column
	index map[string]int // column name -> position in cols
	rows  int
}

// New creates an empty table with the given column names, in order.
// Duplicate column names are rejected.
func New(names []string) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("table must have at least one column")
	}

	t := &Table{
		cols:  make([]Column, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := t.index[name]; exists {
			return nil, fmt.Errorf("duplicate column name: %s", name)
		}
		t.cols[i] = Column{Name: name}
		t.index[name] = i
	}
	return t, nil
}

// AppendRow appends one value per column, in column order.
func (t *Table) AppendRow(values []Value) error {
	if len(values) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.cols))
	}
	for i, v := range values {
		t.cols[i].Values = append(t.cols[i].Values, v)
	}
	t.rows++
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.cols[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at (row, column name). The column must exist
// and the row must be in range.
func (t *Table) Value(row int, name string) (Value, error) {
	col, ok := t.Column(name)
	if !ok {
		return Null(), fmt.Errorf("no such column: %s", name)
	}
	if row < 0 || row >= t.rows {
		return Null(), fmt.Errorf("row %d out of range (0..%d)", row, t.rows-1)
	}
	return col.Values[row], nil
}

// Row returns the values of one row in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.cols))
	for c := range t.cols {
		row[c] = t.cols[c].Values[i]
	}
	return row
}
