package matrix

import "github.com/effectus/explorer/choice"

// Option is one selectable value of a choice as the selector UI shows it.
type Option struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Checked   bool   `json:"checked"`
}

// Choice is the selector UI state of one dimension.
type Choice struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"displayName"`
	ControlType choice.ControlType `json:"controlType"`
	Value       string             `json:"currentValue"`
	Options     []Option           `json:"options"`
}

// ChoicesWithAvailability returns every dimension with its current value and
// its options marked available or not under the constrained settings.
//
// A checkbox is exposed as a single option that is only available when both
// its true and false values are available.
func (m *Matrix) ChoicesWithAvailability() []Choice {
	settings := m.ConstrainedSettings()
	dims := m.catalog.Dimensions()
	choices := make([]Choice, 0, len(dims))
	for _, dim := range dims {
		current := settings[dim.Name]
		c := Choice{
			Name:        dim.Name,
			DisplayName: dim.DisplayName,
			ControlType: dim.ControlType,
			Value:       current,
		}

		if dim.ControlType == choice.Checkbox {
			available := m.IsOptionAvailable(dim.Name, choice.CheckboxTrue, settings) &&
				m.IsOptionAvailable(dim.Name, choice.CheckboxFalse, settings)
			c.Options = []Option{{
				Label:     dim.DisplayName,
				Value:     choice.CheckboxTrue,
				Available: available,
				Checked:   current == choice.CheckboxTrue,
			}}
			choices = append(choices, c)
			continue
		}

		for _, value := range m.catalog.Domain(dim.Name) {
			c.Options = append(c.Options, Option{
				Label:     value,
				Value:     value,
				Available: m.IsOptionAvailable(dim.Name, value, settings),
				Checked:   value == current,
			})
		}
		choices = append(choices, c)
	}
	return choices
}
