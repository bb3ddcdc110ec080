// Package choice derives the choice dimensions of an explorer from the header
// row of its decision table.
package choice

import "github.com/effectus/explorer/table"

// Dimension is one user-facing axis of variation.
type Dimension struct {
	// Name is the header cell without its control suffix. Patches and
	// settings are keyed by Name.
	Name string
	// DisplayName is the label shown in the selector UI.
	DisplayName string
	// Column is the full header cell, used to read the table.
	Column      string
	ControlType ControlType
	// Position is the dimension's index in declaration order.
	Position int
}

// Catalog is the ordered set of dimensions of one table and their domains.
// Dimension order is header order and defines the resolver's dependency order.
type Catalog struct {
	dimensions []Dimension
	byName     map[string]int
	domains    [][]string
}

// NewCatalog scans the header of t. Columns without a recognized control
// suffix are output columns and are skipped. When two columns strip to the same
// name, the leftmost one is the dimension.
func NewCatalog(t *table.Table) *Catalog {
	c := &Catalog{byName: make(map[string]int)}
	for _, cell := range t.Header() {
		name, control, ok := ParseHeader(cell)
		if !ok {
			continue
		}
		if _, exists := c.byName[name]; exists {
			continue
		}
		c.byName[name] = len(c.dimensions)
		c.dimensions = append(c.dimensions, Dimension{
			Name:        name,
			DisplayName: name,
			Column:      cell,
			ControlType: control,
			Position:    len(c.dimensions),
		})
		c.domains = append(c.domains, t.ColumnValues(cell))
	}
	return c
}

// Dimensions returns the dimensions in header order.
func (c *Catalog) Dimensions() []Dimension {
	return append([]Dimension(nil), c.dimensions...)
}

// Len returns the number of dimensions.
func (c *Catalog) Len() int {
	return len(c.dimensions)
}

// Dimension looks up a dimension by name.
func (c *Catalog) Dimension(name string) (Dimension, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Dimension{}, false
	}
	return c.dimensions[i], true
}

// Has reports whether name is a dimension.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns the dimension names in header order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.dimensions))
	for i, dim := range c.dimensions {
		names[i] = dim.Name
	}
	return names
}

// Domain returns the distinct non-blank values of a dimension in
// first-occurrence order.
func (c *Catalog) Domain(name string) []string {
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	return append([]string(nil), c.domains[i]...)
}

// LeftOf returns the dimensions declared before name.
func (c *Catalog) LeftOf(name string) []Dimension {
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	return append([]Dimension(nil), c.dimensions[:i]...)
}
