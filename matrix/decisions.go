package matrix

import "github.com/effectus/explorer/patch"

// AllDecisions returns, for each table row, a patch of its non-blank choice
// values in choice order. Used to enumerate every deep link of an explorer.
func (m *Matrix) AllDecisions() []patch.Patch {
	dims := m.catalog.Dimensions()
	rows := m.table.Rows()
	out := make([]patch.Patch, 0, len(rows))
	for _, row := range rows {
		p := make(patch.Patch, 0, len(dims))
		for _, dim := range dims {
			if value := row.Value(dim.Column); value != "" {
				p = p.Set(dim.Name, value)
			}
		}
		out = append(out, p)
	}
	return out
}

// AllDecisionsEncoded returns AllDecisions in encoded form.
func (m *Matrix) AllDecisionsEncoded() []string {
	decisions := m.AllDecisions()
	out := make([]string, len(decisions))
	for i, p := range decisions {
		out[i] = m.grammar.Encode(p)
	}
	return out
}
