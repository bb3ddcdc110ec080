package testutils

import (
	"github.com/effectus/explorer/choice"
	"github.com/effectus/explorer/table"
)

// ScenarioGrid is the three-row Metric/Interval table.
func ScenarioGrid() [][]string {
	return [][]string{
		{"Metric Radio", "Interval Dropdown"},
		{"Cases", "Cumulative"},
		{"Cases", "Weekly"},
		{"Tests", "Cumulative"},
	}
}

// ExplorerGrid is a COVID-style explorer with output columns, a checkbox and a
// default view row.
func ExplorerGrid() [][]string {
	return [][]string{
		{"grapherId", "Metric Radio", "Interval Dropdown", "Per capita Checkbox", "title", "defaultView"},
		{"101", "Cases", "Cumulative", "false", "Total confirmed cases", ""},
		{"102", "Cases", "Cumulative", "true", "Total confirmed cases per million", ""},
		{"103", "Cases", "Weekly", "false", "Weekly confirmed cases", "true"},
		{"104", "Cases", "Weekly", "true", "Weekly confirmed cases per million", ""},
		{"201", "Deaths", "Cumulative", "false", "Total confirmed deaths", ""},
		{"202", "Deaths", "Cumulative", "true", "Total confirmed deaths per million", ""},
		{"301", "Tests", "Cumulative", "false", "Total tests", ""},
		{"302", "Tests", "Daily", "true", "Daily tests per thousand", ""},
	}
}

// BlankGrid uses blank cells as wildcards: rows apply to any Interval or Aligned value.
func BlankGrid() [][]string {
	return [][]string{
		{"Metric Radio", "Interval Radio", "Aligned Checkbox", "grapherId"},
		{"Cases", "", "", "1"},
		{"Tests", "Weekly", "", "2"},
		{"Tests", "Daily", "true", "3"},
		{"Tests", "Daily", "false", "4"},
		{"Vaccines", "", "true", "5"},
		{"Vaccines", "Weekly", "false", "6"},
	}
}

// Build returns the table and catalog of grid.
func Build(grid [][]string) (*table.Table, *choice.Catalog) {
	t := table.New(grid)
	return t, choice.NewCatalog(t)
}
