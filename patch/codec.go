package patch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultRowDelimiter separates entries.
	DefaultRowDelimiter = "..."
	// DefaultColumnDelimiter separates a key from its values within one entry.
	DefaultColumnDelimiter = "~"
)

// ErrInvalidGrammar is returned by NewGrammar for unusable delimiters.
var ErrInvalidGrammar = errors.New("invalid patch grammar")

// Grammar holds the delimiters of the patch format and the tokens that stand in
// for delimiters occurring inside a cell.
type Grammar struct {
	RowDelimiter    string
	ColumnDelimiter string

	rowToken    string
	columnToken string
}

// DefaultGrammar returns the "..." / "~" grammar.
func DefaultGrammar() Grammar {
	g, _ := NewGrammar(DefaultRowDelimiter, DefaultColumnDelimiter)
	return g
}

// NewGrammar validates a pair of delimiters.
// Delimiters must be non-empty and share no characters. They may not contain
// letters, digits, '%' or '+', all of which the cell escaping itself produces.
func NewGrammar(rowDelimiter, columnDelimiter string) (Grammar, error) {
	if rowDelimiter == "" || columnDelimiter == "" {
		return Grammar{}, fmt.Errorf("%w: delimiters must not be empty", ErrInvalidGrammar)
	}
	for _, c := range []byte(rowDelimiter + columnDelimiter) {
		if c == '%' || c == '+' || isAlphanumeric(c) {
			return Grammar{}, fmt.Errorf("%w: delimiters must not contain %q", ErrInvalidGrammar, c)
		}
	}
	if strings.ContainsAny(rowDelimiter, columnDelimiter) {
		return Grammar{}, fmt.Errorf("%w: row delimiter %q and column delimiter %q share characters",
			ErrInvalidGrammar, rowDelimiter, columnDelimiter)
	}
	return Grammar{
		RowDelimiter:    rowDelimiter,
		ColumnDelimiter: columnDelimiter,
		rowToken:        percentEncodeAll(rowDelimiter),
		columnToken:     percentEncodeAll(columnDelimiter),
	}, nil
}

// Encode serializes a patch with the default grammar.
func Encode(p Patch) string {
	return DefaultGrammar().Encode(p)
}

// Decode parses a patch string with the default grammar.
func Decode(s string) Patch {
	return DefaultGrammar().Decode(s)
}

// Encode serializes a patch: every entry becomes a row of key followed by values.
func (g Grammar) Encode(p Patch) string {
	rows := make([][]string, len(p))
	for i, entry := range p {
		row := make([]string, 0, len(entry.Values)+1)
		row = append(row, entry.Key)
		row = append(row, entry.Values...)
		rows[i] = row
	}
	return g.EncodeRows(rows)
}

// Decode parses a patch string. Malformed or empty input yields an empty patch.
// A row with exactly one value collapses to the scalar form.
func (g Grammar) Decode(s string) Patch {
	rows, ok := g.decodeRows(s)
	if !ok {
		return Patch{}
	}
	out := make(Patch, 0, len(rows))
	for _, row := range rows {
		out = out.Set(row[0], row[1:]...)
	}
	return out
}

// EncodeRows joins escaped cells with the column delimiter and rows with the row delimiter.
func (g Grammar) EncodeRows(rows [][]string) string {
	g = g.ready()
	encoded := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = g.encodeCell(cell)
		}
		encoded[i] = strings.Join(cells, g.ColumnDelimiter)
	}
	return strings.Join(encoded, g.RowDelimiter)
}

// DecodeRows splits a patch string into rows of decoded cells.
// Malformed or empty input yields no rows.
func (g Grammar) DecodeRows(s string) [][]string {
	rows, _ := g.decodeRows(s)
	return rows
}

func (g Grammar) decodeRows(s string) ([][]string, bool) {
	g = g.ready()
	if s == "" {
		return nil, false
	}
	segments := strings.Split(s, g.RowDelimiter)
	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		cells := strings.Split(segment, g.ColumnDelimiter)
		for i, cell := range cells {
			decoded, err := g.decodeCell(cell)
			if err != nil {
				return nil, false
			}
			cells[i] = decoded
		}
		rows = append(rows, cells)
	}
	return rows, true
}

// encodeCell runs, in order: URI component escaping, column delimiter
// replacement, row delimiter replacement, then %20 to '+'.
func (g Grammar) encodeCell(cell string) string {
	out := encodeURIComponent(cell)
	out = strings.ReplaceAll(out, g.ColumnDelimiter, g.columnToken)
	out = strings.ReplaceAll(out, g.RowDelimiter, g.rowToken)
	out = escapeBoundary(out, g.RowDelimiter)
	out = escapeBoundary(out, g.ColumnDelimiter)
	return strings.ReplaceAll(out, "%20", "+")
}

// decodeCell reverses encodeCell step by step.
func (g Grammar) decodeCell(cell string) (string, error) {
	out := strings.ReplaceAll(cell, "+", "%20")
	out = strings.ReplaceAll(out, g.rowToken, g.RowDelimiter)
	out = strings.ReplaceAll(out, g.columnToken, g.ColumnDelimiter)
	return url.PathUnescape(out)
}

// ready fills in the tokens of a Grammar built as a plain struct literal.
func (g Grammar) ready() Grammar {
	if g.rowToken != "" && g.columnToken != "" {
		return g
	}
	if g.RowDelimiter == "" {
		g.RowDelimiter = DefaultRowDelimiter
	}
	if g.ColumnDelimiter == "" {
		g.ColumnDelimiter = DefaultColumnDelimiter
	}
	g.rowToken = percentEncodeAll(g.RowDelimiter)
	g.columnToken = percentEncodeAll(g.ColumnDelimiter)
	return g
}

// escapeBoundary percent-encodes the tail of an escaped cell when that tail,
// followed by delim, would produce a match of delim starting inside the cell.
// A cell ending in "." followed by "..." is the common case.
func escapeBoundary(cell, delim string) string {
	for k := len(delim) - 1; k > 0; k-- {
		if strings.HasSuffix(cell, delim[:k]) && delim[k:] == delim[:len(delim)-k] {
			return cell[:len(cell)-k] + percentEncodeAll(delim[:k])
		}
	}
	return cell
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes every byte except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func percentEncodeAll(s string) string {
	var b strings.Builder
	b.Grow(3 * len(s))
	for i := 0; i < len(s); i++ {
		b.WriteByte('%')
		b.WriteByte(upperhex[s[i]>>4])
		b.WriteByte(upperhex[s[i]&15])
	}
	return b.String()
}

func isAlphanumeric(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isUnreserved(c byte) bool {
	if isAlphanumeric(c) {
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
