// Package repositories provides PostgreSQL data access for the record store.
// All entities are keyed by an opaque session id; upserts are implemented
// with a unique index and ON CONFLICT so two near-simultaneous saves on the
// same session id cannot produce divergent records.
package repositories

import (
	"encoding/json"
	"fmt"
)

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonbValue converts a value to JSONB format for database insertion.
// Returns nil for nil/empty slices and maps to store NULL in the database.
func jsonbValue(v any) any {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil
		}
		return val
	case []any:
		if len(val) == 0 {
			return nil
		}
		return val
	case map[string]any:
		if len(val) == 0 {
			return nil
		}
		return val
	default:
		return v
	}
}

// scanJSONB unmarshals a JSONB column into v, tolerating NULL and the JSON
// literal null.
func scanJSONB(data []byte, v any, column string) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", column, err)
	}
	return nil
}
