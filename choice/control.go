package choice

import "strings"

// ControlType is the UI control a choice is rendered with.
type ControlType string

const (
	Radio    ControlType = "Radio"
	Checkbox ControlType = "Checkbox"
	Dropdown ControlType = "Dropdown"
)

// Checkbox choices store their state as these cell values.
const (
	CheckboxTrue  = "true"
	CheckboxFalse = "false"
)

// controlSuffixes is the closed set of header suffixes that mark a choice column.
var controlSuffixes = map[ControlType]string{
	Radio:    " " + string(Radio),
	Checkbox: " " + string(Checkbox),
	Dropdown: " " + string(Dropdown),
}

// ControlTypes returns the recognized control types.
func ControlTypes() []ControlType {
	return []ControlType{Radio, Checkbox, Dropdown}
}

// Suffix returns the header suffix for the control type.
func (c ControlType) Suffix() string {
	return controlSuffixes[c]
}

// Valid reports whether c is one of the recognized control types.
func (c ControlType) Valid() bool {
	_, ok := controlSuffixes[c]
	return ok
}

// ParseHeader splits a header cell into a choice name and its control type.
// The suffix match is case-sensitive and requires a separating space. ok is false
// for output columns.
func ParseHeader(cell string) (name string, control ControlType, ok bool) {
	for _, candidate := range ControlTypes() {
		suffix := candidate.Suffix()
		if !strings.HasSuffix(cell, suffix) {
			continue
		}
		if trimmed := strings.TrimSpace(strings.TrimSuffix(cell, suffix)); trimmed != "" {
			return trimmed, candidate, true
		}
	}
	return "", "", false
}
