// Package matrix resolves a user's partial choice selections against a decision
// table so that every combination lands on a renderable row.
package matrix

import (
	"io"
	"log/slog"

	"github.com/effectus/explorer/choice"
	"github.com/effectus/explorer/patch"
	"github.com/effectus/explorer/table"
)

// DefaultViewColumn marks the row whose choice values are used for choices
// the patch leaves unset.
const DefaultViewColumn = "defaultView"

// Settings maps choice names to values.
type Settings map[string]string

// Clone returns a copy of s.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ConfigOption configures a Matrix.
type ConfigOption func(*Matrix)

// WithLogger sets the logger used to report choices that cannot be resolved.
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(m *Matrix) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithGrammar sets the grammar used to decode and encode the patch.
func WithGrammar(g patch.Grammar) ConfigOption {
	return func(m *Matrix) {
		m.grammar = g
	}
}

// WithPatch sets the initial patch.
func WithPatch(p patch.Patch) ConfigOption {
	return func(m *Matrix) {
		m.initial = p.Clone()
		m.encoded = nil
	}
}

// WithEncodedPatch sets the initial patch from its encoded form. It is decoded
// with the matrix grammar once all options are applied.
func WithEncodedPatch(encoded string) ConfigOption {
	return func(m *Matrix) {
		m.encoded = &encoded
		m.initial = nil
	}
}

// Matrix holds the user's patch over a shared table and catalog.
// A Matrix is not safe for concurrent use; the table and catalog are.
type Matrix struct {
	table    *table.Table
	catalog  *choice.Catalog
	grammar  patch.Grammar
	logger   *slog.Logger
	defaults Settings

	patch   patch.Patch
	initial patch.Patch
	encoded *string
}

// New creates a matrix over t and its catalog.
func New(t *table.Table, catalog *choice.Catalog, options ...ConfigOption) *Matrix {
	m := &Matrix{
		table:   t,
		catalog: catalog,
		grammar: patch.DefaultGrammar(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(m)
	}

	switch {
	case m.encoded != nil:
		m.patch = m.grammar.Decode(*m.encoded)
	case m.initial != nil:
		m.patch = m.initial
	default:
		m.patch = patch.Patch{}
	}
	m.initial, m.encoded = nil, nil

	m.defaults = defaultView(t, catalog)
	return m
}

// FromGrid builds the table and catalog from a grid and decodes encoded as the
// initial patch.
func FromGrid(grid [][]string, encoded string, options ...ConfigOption) *Matrix {
	t := table.New(grid)
	options = append([]ConfigOption{WithEncodedPatch(encoded)}, options...)
	return New(t, choice.NewCatalog(t), options...)
}

// Table returns the shared decision table.
func (m *Matrix) Table() *table.Table {
	return m.table
}

// Catalog returns the shared choice catalog.
func (m *Matrix) Catalog() *choice.Catalog {
	return m.catalog
}

// Patch returns a copy of the current patch.
func (m *Matrix) Patch() patch.Patch {
	return m.patch.Clone()
}

// Encode serializes the current patch.
func (m *Matrix) Encode() string {
	return m.grammar.Encode(m.patch)
}

// String implements fmt.Stringer with the encoded patch.
func (m *Matrix) String() string {
	return m.Encode()
}

// patchedValue returns the user's value for a choice. An empty value counts as unset.
func (m *Matrix) patchedValue(name string) (string, bool) {
	value, ok := m.patch.Get(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func defaultView(t *table.Table, catalog *choice.Catalog) Settings {
	if !t.HasColumn(DefaultViewColumn) {
		return nil
	}
	row, ok := t.FindFirst(table.Query{DefaultViewColumn: table.Equals(choice.CheckboxTrue)})
	if !ok {
		return nil
	}
	defaults := make(Settings)
	for _, dim := range catalog.Dimensions() {
		if value := row.Value(dim.Column); value != "" {
			defaults[dim.Name] = value
		}
	}
	return defaults
}
