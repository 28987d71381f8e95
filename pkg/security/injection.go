package security

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a
// user-supplied field value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	FieldName   string // Name of the field that failed the check
	FieldValue  string // The value that was checked
}

// CheckFieldForInjection uses libinjection to detect SQL injection patterns
// in a user-supplied field value.
//
// Only string values are checked - numbers, booleans, and other types cannot
// contain SQL injection patterns and will return nil (no injection detected).
//
// All persistence goes through parameterized queries, so a detection here is
// an audit signal, not a blocked request.
func CheckFieldForInjection(fieldName string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			FieldName:   fieldName,
			FieldValue:  strValue,
		}
	}

	return nil
}

// CheckAllFields screens every value in fields for SQL injection patterns.
//
// Returns a slice of InjectionCheckResult for each field that failed the
// check, empty when all fields are clean.
func CheckAllFields(fields map[string]any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for name, value := range fields {
		if result := CheckFieldForInjection(name, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
