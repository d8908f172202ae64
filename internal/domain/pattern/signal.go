package pattern

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// DecodeSignal decodes a signal column. Null or empty columns have no values.
// A json string is read as a single value and non-string array elements are
// ignored. Any other shape is an error.
func DecodeSignal(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		var single string
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, fmt.Errorf("signal is neither an array nor a string: %w", err)
		}

		return []string{single}, nil
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}

	return result, nil
}

// NormalizeKey folds the case, trims and collapses inner whitespace. An empty
// result means the value is dropped.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// displayForm trims and collapses the whitespace but keeps the case.
func displayForm(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
