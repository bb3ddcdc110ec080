// Package table holds the immutable decision table of an explorer: the
// author-approved rows of choice values and output columns.
package table

// Row is one author-approved configuration. Rows are never mutated.
type Row struct {
	index int
	table *Table
	cells []string
}

// Index returns the row's position in the table, starting from 0 for the first
// row after the header.
func (r Row) Index() int {
	return r.index
}

// Value returns the cell for column, or "" when the column does not exist.
func (r Row) Value(column string) string {
	if r.table == nil {
		return ""
	}
	i, ok := r.table.columns[column]
	if !ok {
		return ""
	}
	return r.cells[i]
}

// Cells returns a copy of the row's cells in header order.
func (r Row) Cells() []string {
	return append([]string(nil), r.cells...)
}

// Map returns the row as column name to cell value.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.cells))
	if r.table == nil {
		return out
	}
	for i, column := range r.table.header {
		if _, exists := out[column]; !exists {
			out[column] = r.cells[i]
		}
	}
	return out
}

// Table is a read-only view over authored rows. It is safe to share between
// goroutines once built.
type Table struct {
	header  []string
	columns map[string]int
	rows    []Row
}

// New builds a table from a tokenized grid whose first row is the header.
// Short rows are padded with blanks and long rows are truncated to the header.
// When a column name repeats, the first occurrence wins.
func New(grid [][]string) *Table {
	t := &Table{columns: make(map[string]int)}
	if len(grid) == 0 {
		return t
	}

	t.header = append([]string(nil), grid[0]...)
	for i, column := range t.header {
		if _, exists := t.columns[column]; !exists {
			t.columns[column] = i
		}
	}

	t.rows = make([]Row, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		cells := make([]string, len(t.header))
		copy(cells, raw)
		t.rows = append(t.rows, Row{index: len(t.rows), table: t, cells: cells})
	}
	return t
}

// Header returns a copy of the header row.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// Len returns the number of rows, excluding the header.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns every row in table order.
func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Row returns the row at index.
func (t *Table) Row(index int) (Row, bool) {
	if index < 0 || index >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[index], true
}

// ColumnValues returns the distinct non-blank values of column in first-occurrence order.
func (t *Table) ColumnValues(column string) []string {
	i, ok := t.columns[column]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, row := range t.rows {
		value := row.cells[i]
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values
}
