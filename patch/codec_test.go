package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const reservedCharacters = `! * ' ( ) ; : @ & = + $ , / ? # [ ] - _ . ~ | " \`

func TestEncodeJoinsEntries(t *testing.T) {
	p := Patch{}.
		Set("selection", "France", "Germany").
		Set("chart", "Map")

	assert.Equal(t, "selection~France~Germany...chart~Map", Encode(p))
}

func TestEncodeEscapesDelimitersInsideCells(t *testing.T) {
	assert.Equal(t, "foo~a%7Eb", Encode(Patch{}.Set("foo", "a~b")))
	assert.Equal(t, "foo~a%2E%2E%2Eb", Encode(Patch{}.Set("foo", "a...b")))
	assert.Equal(t, "foo~hello+world", Encode(Patch{}.Set("foo", "hello world")))
	assert.Equal(t, "foo~1%2B1", Encode(Patch{}.Set("foo", "1+1")))
}

func TestEncodeEscapesTrailingDots(t *testing.T) {
	assert.Equal(t, "a~end%2E...b~c", Encode(Patch{}.Set("a", "end.").Set("b", "c")))
	assert.Equal(t, "a~x%2E%2E", Encode(Patch{}.Set("a", "x..")))
	assert.Equal(t, "a~x.y", Encode(Patch{}.Set("a", "x.y")))
}

func TestDecodeTildeValue(t *testing.T) {
	decoded := Decode(Encode(Patch{}.Set("foo", "a~b")))

	value, ok := decoded.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "a~b", value)
	assert.Equal(t, Patch{{Key: "foo", Values: []string{"a~b"}}}, decoded)
}

func TestDecodeEmptyKeyAndEmptyValue(t *testing.T) {
	original := Patch{}.
		Set("filters", "").
		Set("", "time", "lastMonth")

	encoded := Encode(original)
	assert.Equal(t, "filters~...~time~lastMonth", encoded)
	assert.Equal(t, original, Decode(encoded))
}

func TestDecodeCollapsesSingleValue(t *testing.T) {
	decoded := Decode("chart~Map...selection~France~Germany")

	chart, ok := decoded.Values("chart")
	require.True(t, ok)
	assert.Equal(t, []string{"Map"}, chart)
	assert.False(t, decoded[0].IsArray())

	selection, ok := decoded.Values("selection")
	require.True(t, ok)
	assert.Equal(t, []string{"France", "Germany"}, selection)
	assert.True(t, decoded[1].IsArray())
}

func TestDecodeMalformedInput(t *testing.T) {
	assert.Empty(t, Decode(""))
	assert.Empty(t, Decode("foo~%zz"))
	assert.Empty(t, Decode("foo~bar...baz~100%"))
	assert.Nil(t, DefaultGrammar().DecodeRows(""))
}

func TestDecodeDuplicateKeysKeepFirstPosition(t *testing.T) {
	decoded := Decode("a~1...b~2...a~3")

	assert.Equal(t, []string{"a", "b"}, decoded.Keys())
	value, _ := decoded.Get("a")
	assert.Equal(t, "3", value)
}

func TestRoundTripReservedCharacters(t *testing.T) {
	original := Patch{}.
		Set("adversarial", reservedCharacters).
		Set(reservedCharacters, "key", reservedCharacters+"...")

	assert.Equal(t, original, Decode(Encode(original)))
}

func TestRoundTripRows(t *testing.T) {
	g := DefaultGrammar()
	rows := [][]string{
		{"Metric", "Cases"},
		{"Interval", "7-day ~ rolling", "..."},
		{"", ""},
	}

	assert.Equal(t, rows, g.DecodeRows(g.EncodeRows(rows)))
}

func TestCustomGrammar(t *testing.T) {
	g, err := NewGrammar("|", ":")
	require.NoError(t, err)

	original := Patch{}.Set("a", "x:y", "z|w").Set("b", "")
	encoded := g.Encode(original)

	assert.Equal(t, "a:x%3Ay:z%7Cw|b:", encoded)
	assert.Equal(t, original, g.Decode(encoded))
}

func TestZeroValueGrammarUsesDefaults(t *testing.T) {
	var g Grammar
	p := Patch{}.Set("foo", "a~b")

	assert.Equal(t, Encode(p), g.Encode(p))
	assert.Equal(t, p, g.Decode(g.Encode(p)))
}

func TestNewGrammarRejectsUnusableDelimiters(t *testing.T) {
	cases := []struct {
		row, column string
	}{
		{"", "~"},
		{"...", ""},
		{"..", "."},
		{"%%", "~"},
		{"...", "+"},
		{"ab", "~"},
		{"..~", "~"},
	}
	for _, tc := range cases {
		_, err := NewGrammar(tc.row, tc.column)
		assert.Truef(t, errors.Is(err, ErrInvalidGrammar), "row=%q column=%q", tc.row, tc.column)
	}
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := patchGenerator().Draw(t, "patch")
		assert.Equal(t, original, Decode(Encode(original)))
	})
}

func TestDelimiterCollisionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := cellGenerator().Draw(t, "prefix")
		suffix := cellGenerator().Draw(t, "suffix")
		delimiter := rapid.SampledFrom([]string{DefaultRowDelimiter, DefaultColumnDelimiter, ".", ".."}).Draw(t, "delimiter")
		value := prefix + delimiter + suffix

		original := Patch{}.Set("k", value).Set("next", suffix+delimiter)
		decoded := Decode(Encode(original))

		got, ok := decoded.Get("k")
		assert.True(t, ok)
		assert.Equal(t, value, got)
		assert.Equal(t, original, decoded)
	})
}

func TestCustomGrammarRoundTripProperty(t *testing.T) {
	g, err := NewGrammar("--", "!")
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		original := patchGenerator().Draw(t, "patch")
		assert.Equal(t, original, g.Decode(g.Encode(original)))
	})
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("foo", "a~b")
	f.Add("", "...")
	f.Add("end.", "x..")
	f.Add(reservedCharacters, "%7E%2E")
	f.Fuzz(func(t *testing.T, key, value string) {
		original := Patch{}.Set(key, value).Set(key+"2", value, key)
		assert.Equal(t, original, Decode(Encode(original)))
	})
}

func cellGenerator() *rapid.Generator[string] {
	adversarial := rapid.StringOf(rapid.RuneFrom([]rune(reservedCharacters + "%abc.~ ")))
	return rapid.OneOf(rapid.String(), adversarial)
}

func patchGenerator() *rapid.Generator[Patch] {
	return rapid.Custom(func(t *rapid.T) Patch {
		keys := rapid.SliceOfNDistinct(cellGenerator(), 0, 5, rapid.ID[string]).Draw(t, "keys")
		out := Patch{}
		for _, key := range keys {
			values := rapid.SliceOfN(cellGenerator(), 1, 4).Draw(t, "values")
			out = out.Set(key, values...)
		}
		return out
	})
}
