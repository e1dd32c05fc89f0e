package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrConversion is returned when a raw value cannot be read as the declared type.
var ErrConversion = errors.New("conversion failed")

// Coerce converts a raw textual value into the typed representation of t.
//   - int: base-10 integer, ErrConversion otherwise
//   - bool: "true", "1" and "yes" (any case) are true, anything else is false
//   - str: returned unchanged
func Coerce(raw string, t ColumnType) (any, error) {
	switch t {
	case ColumnTypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, ErrConversion
		}
		return n, nil
	case ColumnTypeBool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true, nil
		}
		return false, nil
	case ColumnTypeStr:
		return raw, nil
	default:
		return nil, ErrConversion
	}
}

// Normalize brings a value decoded from JSON back to the Go type used for t.
// JSON numbers arrive as float64 (or json.Number); integers are stored as int64.
// The second result is false when v cannot represent a value of t.
func Normalize(v any, t ColumnType) (any, bool) {
	switch t {
	case ColumnTypeInt:
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			if n == math.Trunc(n) {
				return int64(n), true
			}
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, true
			}
		}
	case ColumnTypeBool:
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			c, _ := Coerce(b, ColumnTypeBool)
			return c, true
		}
	case ColumnTypeStr:
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return v, false
}
