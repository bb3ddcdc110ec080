package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidConfig is returned when a base chart config is not a JSON object.
var ErrInvalidConfig = errors.New("base config must be a JSON object")

// ApplyOverrides sets each override as a top-level key of the JSON object base.
// Cell text is coerced to the type base already holds at that key: numbers and
// booleans are parsed, anything else stays a string. A cell that does not parse
// as the base type is kept as a string.
func ApplyOverrides(base []byte, overrides map[string]string) ([]byte, error) {
	if len(strings.TrimSpace(string(base))) == 0 {
		base = []byte("{}")
	}
	if !gjson.ValidBytes(base) || !gjson.ParseBytes(base).IsObject() {
		return nil, ErrInvalidConfig
	}

	config := make(map[string]any)
	if err := json.Unmarshal(base, &config); err != nil {
		return nil, fmt.Errorf("decoding base config: %w", err)
	}
	for key, cell := range overrides {
		config[key] = coerce(gjson.GetBytes(base, escapePath(key)), cell)
	}

	out, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

func coerce(existing gjson.Result, cell string) any {
	switch existing.Type {
	case gjson.Number:
		if n, err := strconv.ParseFloat(cell, 64); err == nil {
			return n
		}
	case gjson.True, gjson.False:
		if b, err := strconv.ParseBool(cell); err == nil {
			return b
		}
	}
	return cell
}

// escapePath makes a column name usable as a literal gjson key.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
