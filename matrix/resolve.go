package matrix

import (
	"github.com/effectus/explorer/choice"
	"github.com/effectus/explorer/table"
)

// ConstrainedSettings resolves every choice left to right. A patched value that
// is unavailable given the choices to its left is replaced by the default view
// value, then by the first available value of its domain. A choice with no
// available value is left out of the result.
func (m *Matrix) ConstrainedSettings() Settings {
	settings := make(Settings, m.catalog.Len())
	for _, dim := range m.catalog.Dimensions() {
		if value, ok := m.resolve(dim, settings); ok {
			settings[dim.Name] = value
			continue
		}
		m.logger.Warn("choice has no available option", "choice", dim.Name)
	}
	return settings
}

func (m *Matrix) resolve(dim choice.Dimension, left Settings) (string, bool) {
	if value, ok := m.patchedValue(dim.Name); ok && m.IsOptionAvailable(dim.Name, value, left) {
		return value, true
	}
	if value, ok := m.defaults[dim.Name]; ok && m.IsOptionAvailable(dim.Name, value, left) {
		return value, true
	}
	return m.FirstAvailableOption(dim.Name, left)
}

// IsOptionAvailable reports whether some row has value in the named choice while
// agreeing with context on every choice declared to its left. Blank cells in
// those left columns match any context value; the named column must match
// exactly. A left choice missing from context only matches blank cells.
// Choices to the right never affect the result.
func (m *Matrix) IsOptionAvailable(name, value string, context Settings) bool {
	dim, ok := m.catalog.Dimension(name)
	if !ok || value == "" {
		return false
	}
	q := table.Query{dim.Column: table.Equals(value)}
	for _, left := range m.catalog.LeftOf(name) {
		q[left.Column] = contextMatch(context, left.Name)
	}
	return m.table.Any(q)
}

// FirstAvailableOption returns the first domain value of the named choice that
// is available under context.
func (m *Matrix) FirstAvailableOption(name string, context Settings) (string, bool) {
	for _, value := range m.catalog.Domain(name) {
		if m.IsOptionAvailable(name, value, context) {
			return value, true
		}
	}
	return "", false
}

// SelectedRow returns the first row, in table order, matching the constrained
// settings on every choice, with blank cells as wildcards.
//
// When several choices are left open by blanks, the first matching row wins
// even if a later row matches more choices exactly.
func (m *Matrix) SelectedRow() (table.Row, bool) {
	return m.table.FindFirst(m.rowQuery(m.ConstrainedSettings()))
}

// MatchingRows returns every row compatible with the constrained settings.
func (m *Matrix) MatchingRows() []table.Row {
	return m.table.FindRows(m.rowQuery(m.ConstrainedSettings()))
}

func (m *Matrix) rowQuery(settings Settings) table.Query {
	q := make(table.Query, m.catalog.Len())
	for _, dim := range m.catalog.Dimensions() {
		q[dim.Column] = contextMatch(settings, dim.Name)
	}
	return q
}

func contextMatch(context Settings, name string) table.Match {
	if value, ok := context[name]; ok {
		return table.EqualsOrBlank(value)
	}
	return table.Equals(table.Blank)
}
