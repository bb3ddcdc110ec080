package source

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ParseTSV reads tab-separated rows. Rows may have different lengths; the table
// pads or truncates them to the header.
func ParseTSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading tsv: %w", err)
	}
	return grid, nil
}
