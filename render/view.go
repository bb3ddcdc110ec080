// Package render hands the selected row of an explorer to a chart renderer.
package render

import (
	"github.com/effectus/explorer/matrix"
)

// DefaultIDColumn names the column holding the chart identifier.
const DefaultIDColumn = "grapherId"

// Options configures NewView.
type Options struct {
	// IDColumn overrides DefaultIDColumn.
	IDColumn string
}

func (o Options) idColumn() string {
	if o.IDColumn == "" {
		return DefaultIDColumn
	}
	return o.IDColumn
}

// View is what a renderer needs to draw the current selection.
type View struct {
	Row      int             `json:"row"`
	ID       string          `json:"id,omitempty"`
	Settings matrix.Settings `json:"settings"`
	Patch    string          `json:"patch"`
	// Columns holds every output column of the selected row.
	Columns map[string]string `json:"columns"`
	// Overrides holds the non-blank output cells other than the id, applied
	// over the chart's base config.
	Overrides map[string]string `json:"overrides"`
}

// NewView builds the view of the currently selected row. ok is false when no
// row is selected.
func NewView(m *matrix.Matrix, opts Options) (View, bool) {
	row, ok := m.SelectedRow()
	if !ok {
		return View{}, false
	}

	idColumn := opts.idColumn()
	v := View{
		Row:       row.Index(),
		ID:        row.Value(idColumn),
		Settings:  m.ConstrainedSettings(),
		Patch:     m.Encode(),
		Columns:   make(map[string]string),
		Overrides: make(map[string]string),
	}

	choiceColumns := make(map[string]bool)
	for _, dim := range m.Catalog().Dimensions() {
		choiceColumns[dim.Column] = true
	}
	for _, column := range m.Table().Header() {
		if choiceColumns[column] || column == matrix.DefaultViewColumn {
			continue
		}
		value := row.Value(column)
		v.Columns[column] = value
		if column != idColumn && value != "" {
			v.Overrides[column] = value
		}
	}
	return v, true
}

// Config merges the view's overrides into base.
func (v View) Config(base []byte) ([]byte, error) {
	return ApplyOverrides(base, v.Overrides)
}
