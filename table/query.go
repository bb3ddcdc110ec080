package table

// Blank is the empty cell. In queries built with EqualsOrBlank it matches any
// requested value.
const Blank = ""

// Match is the set of cell values acceptable for one column.
type Match []string

// Equals matches exactly value.
func Equals(value string) Match {
	return Match{value}
}

// EqualsOrBlank matches value or a blank cell.
func EqualsOrBlank(value string) Match {
	if value == Blank {
		return Match{Blank}
	}
	return Match{value, Blank}
}

// OneOf matches any of values.
func OneOf(values ...string) Match {
	return append(Match(nil), values...)
}

// Accepts reports whether cell is one of the acceptable values.
func (m Match) Accepts(cell string) bool {
	for _, value := range m {
		if value == cell {
			return true
		}
	}
	return false
}

// Query maps column names to acceptable values. A column missing from the
// table reads as blank.
type Query map[string]Match

// FindRows returns the rows satisfying every column of q, in table order.
func (t *Table) FindRows(q Query) []Row {
	var out []Row
	for _, row := range t.rows {
		if t.matches(row, q) {
			out = append(out, row)
		}
	}
	return out
}

// FindFirst returns the first row satisfying q.
func (t *Table) FindFirst(q Query) (Row, bool) {
	for _, row := range t.rows {
		if t.matches(row, q) {
			return row, true
		}
	}
	return Row{}, false
}

// Any reports whether at least one row satisfies q.
func (t *Table) Any(q Query) bool {
	_, ok := t.FindFirst(q)
	return ok
}

func (t *Table) matches(row Row, q Query) bool {
	for column, match := range q {
		if !match.Accepts(row.Value(column)) {
			return false
		}
	}
	return true
}
