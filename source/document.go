// Package source loads the tokenized grid of an explorer from files or object
// storage and watches it for new versions.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/effectus/explorer/table"
)

var (
	// ErrEmptyGrid is returned when a document has no header row.
	ErrEmptyGrid = errors.New("grid has no header row")
	// ErrUnsupportedFormat is returned for formats other than TSV and XLSX.
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// Format is the encoding of an authored grid.
type Format string

const (
	FormatAuto Format = ""
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks a format from a file name extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".txt", ".explorer":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// LoadOptions selects how a document is parsed.
type LoadOptions struct {
	// Format overrides detection by extension.
	Format Format `json:"format" yaml:"format"`
	// Sheet names the XLSX sheet; the first sheet is used when empty.
	Sheet string `json:"sheet" yaml:"sheet"`
}

func (o LoadOptions) format(name string) (Format, error) {
	if o.Format == FormatAuto {
		return DetectFormat(name)
	}
	switch o.Format {
	case FormatTSV, FormatXLSX:
		return o.Format, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.Format)
}

// Document is one loaded version of an authored grid. Each load gets a new
// Version; a changed document replaces the table wholesale.
type Document struct {
	Version  uuid.UUID  `json:"version"`
	Source   string     `json:"source"`
	Format   Format     `json:"format"`
	Grid     [][]string `json:"-"`
	LoadedAt time.Time  `json:"loadedAt"`
}

// Table builds the decision table of the document.
func (d *Document) Table() *table.Table {
	return table.New(d.Grid)
}

// Parse reads a grid in the given format.
func Parse(r io.Reader, format Format, sheet string) ([][]string, error) {
	var (
		grid [][]string
		err  error
	)
	switch format {
	case FormatTSV:
		grid, err = ParseTSV(r)
	case FormatXLSX:
		grid, err = ParseXLSX(r, sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}
	return grid, nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string, opts LoadOptions) (*Document, error) {
	format, err := opts.format(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	grid, err := Parse(bytes.NewReader(data), format, opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return newDocument(path, format, grid), nil
}

func newDocument(source string, format Format, grid [][]string) *Document {
	return &Document{
		Version:  uuid.New(),
		Source:   source,
		Format:   format,
		Grid:     grid,
		LoadedAt: time.Now(),
	}
}
