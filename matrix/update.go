package matrix

import "github.com/effectus/explorer/patch"

// Delta is a choice whose patched value is not the value it resolves to.
type Delta struct {
	Choice      string
	Patched     string
	Constrained string
}

// Snapshot is the set of deltas between a patch and its constrained settings,
// in choice order. Snapshots are immutable once taken.
type Snapshot struct {
	deltas []Delta
}

// Deltas returns the deltas in choice order.
func (s Snapshot) Deltas() []Delta {
	return append([]Delta(nil), s.deltas...)
}

// Lookup returns the delta recorded for a choice.
func (s Snapshot) Lookup(name string) (Delta, bool) {
	for _, delta := range s.deltas {
		if delta.Choice == name {
			return delta, true
		}
	}
	return Delta{}, false
}

// Len returns the number of deltas.
func (s Snapshot) Len() int {
	return len(s.deltas)
}

// Snapshot records every patched choice whose value is currently invalid.
func (m *Matrix) Snapshot() Snapshot {
	settings := m.ConstrainedSettings()
	var deltas []Delta
	for _, name := range m.catalog.Names() {
		patched, ok := m.patchedValue(name)
		if !ok {
			continue
		}
		if constrained := settings[name]; constrained != patched {
			deltas = append(deltas, Delta{Choice: name, Patched: patched, Constrained: constrained})
		}
	}
	return Snapshot{deltas: deltas}
}

// Restorable returns the deltas of before, other than the changed choice, that
// are still invalid with the same patched value in after. Those values are kept
// in the patch so that navigating back recovers the user's original choice.
func Restorable(before, after Snapshot, changed string) []Delta {
	var out []Delta
	for _, delta := range before.deltas {
		if delta.Choice == changed {
			continue
		}
		if still, ok := after.Lookup(delta.Choice); ok && still.Patched == delta.Patched {
			out = append(out, delta)
		}
	}
	return out
}

// SetValue sets a choice in the patch; an empty value clears it. Unknown choice
// names are ignored.
//
// Afterwards the patch holds the constrained value of every resolved choice,
// except that the value just set is kept as given, a cleared choice stays unset,
// and choices that were already invalid and remain invalid keep their original
// patched value.
func (m *Matrix) SetValue(name, value string) {
	if !m.catalog.Has(name) {
		return
	}

	before := m.Snapshot()
	if value == "" {
		m.patch = m.patch.Delete(name)
	} else {
		m.patch = m.patch.Set(name, value)
	}
	after := m.Snapshot()

	restored := make(map[string]string)
	for _, delta := range Restorable(before, after, name) {
		restored[delta.Choice] = delta.Patched
	}
	m.patch = m.normalize(name, value, restored)
}

// SetValues applies several choices in choice order.
func (m *Matrix) SetValues(values Settings) {
	for _, name := range m.catalog.Names() {
		if value, ok := values[name]; ok {
			m.SetValue(name, value)
		}
	}
}

func (m *Matrix) normalize(changed, value string, restored map[string]string) patch.Patch {
	settings := m.ConstrainedSettings()
	next := make(patch.Patch, 0, len(m.patch)+m.catalog.Len())
	for _, name := range m.catalog.Names() {
		switch {
		case name == changed && value == "":
			continue
		case name == changed:
			next = next.Set(name, value)
		default:
			if original, ok := restored[name]; ok {
				next = next.Set(name, original)
			} else if resolved, ok := settings[name]; ok {
				next = next.Set(name, resolved)
			}
		}
	}
	for _, entry := range m.patch {
		if !m.catalog.Has(entry.Key) {
			next = next.Set(entry.Key, entry.Values...)
		}
	}
	return next
}
