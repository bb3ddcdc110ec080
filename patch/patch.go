package patch

import "sort"

// Entry is one key of a patch together with its value(s).
// A single value is the scalar form; more than one value is the array form.
type Entry struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Value returns the first value of the entry, or "" when it has none.
func (e Entry) Value() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}

// IsArray reports whether the entry holds more than one value.
func (e Entry) IsArray() bool {
	return len(e.Values) > 1
}

// Patch is an ordered object whose values are strings or string arrays.
// Key order is insertion order and is preserved by the codec.
type Patch []Entry

// Get returns the scalar value stored under key.
func (p Patch) Get(key string) (string, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Value(), true
	}
	return "", false
}

// Values returns every value stored under key.
func (p Patch) Values(key string) ([]string, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Values, true
	}
	return nil, false
}

// Has reports whether key is present.
func (p Patch) Has(key string) bool {
	return p.index(key) >= 0
}

// Keys returns the keys in order.
func (p Patch) Keys() []string {
	keys := make([]string, len(p))
	for i, entry := range p {
		keys[i] = entry.Key
	}
	return keys
}

// Set stores values under key. An existing key keeps its position.
func (p Patch) Set(key string, values ...string) Patch {
	stored := append([]string(nil), values...)
	if i := p.index(key); i >= 0 {
		p[i].Values = stored
		return p
	}
	return append(p, Entry{Key: key, Values: stored})
}

// Delete removes key if present.
func (p Patch) Delete(key string) Patch {
	i := p.index(key)
	if i < 0 {
		return p
	}
	return append(p[:i:i], p[i+1:]...)
}

// Clone returns a deep copy.
func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	out := make(Patch, len(p))
	for i, entry := range p {
		out[i] = Entry{Key: entry.Key, Values: append([]string(nil), entry.Values...)}
	}
	return out
}

// Map flattens the patch to scalar values. Array entries keep their first value.
func (p Patch) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, entry := range p {
		out[entry.Key] = entry.Value()
	}
	return out
}

// FromMap builds a patch from scalar values. Keys listed in order come first;
// remaining keys follow in sorted order.
func FromMap(values map[string]string, order ...string) Patch {
	out := make(Patch, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, key := range order {
		value, ok := values[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Entry{Key: key, Values: []string{value}})
	}
	rest := make([]string, 0, len(values)-len(seen))
	for key := range values {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		out = append(out, Entry{Key: key, Values: []string{values[key]}})
	}
	return out
}

func (p Patch) index(key string) int {
	for i, entry := range p {
		if entry.Key == key {
			return i
		}
	}
	return -1
}
