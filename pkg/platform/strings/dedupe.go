// Package strings provides string list helpers for query parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitUpper flattens repeated and comma-separated query values into one
// upper-cased, deduplicated list.
//
// Example:
//
//	SplitUpper([]string{"create, void", "CREATE"})
//	// Returns: []string{"CREATE", "VOID"}
func SplitUpper(values []string) []string {
	var parts []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			parts = append(parts, strings.ToUpper(part))
		}
	}
	return DedupeAndTrim(parts)
}
