// Package jsonutil contains helpers for parsing loosely typed JSON, mostly
// model output that does not always respect the requested schema.
package jsonutil

import (
	"encoding/json"
	"strconv"
)

// FlexibleStringValue reads a raw value as a string, accepting the numbers
// and booleans models sometimes emit in string positions. Null and empty
// values become the empty string; anything else falls back to its raw text.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	return string(raw)
}
