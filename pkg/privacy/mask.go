// Package privacy holds the rules that keep raw personal identifiers out of storage.
package privacy

import (
	"strings"
	"unicode"
)

const (
	shortIDLimit = 6
	keepHead     = 3
	keepTail     = 3
	maskRune     = '*'
	localIDLen   = 10
)

// MaskIdentifier replaces the identifying middle of a personal identifier with '*'.
//
// Blank input (empty or whitespace only) yields "" so absence is never stored as a
// masked value. Input is trimmed first. Identifiers of up to six characters keep
// only their first character; longer ones keep the first three and last three, so
// the output always has the same length as the trimmed input.
// Length is counted in runes.
func MaskIdentifier(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	runes := []rune(trimmed)
	n := len(runes)
	out := make([]rune, n)
	copy(out, runes)

	if n <= shortIDLimit {
		for i := 1; i < n; i++ {
			out[i] = maskRune
		}
		return string(out)
	}

	for i := keepHead; i < n-keepTail; i++ {
		out[i] = maskRune
	}
	return string(out)
}

// IsValidLocalID reports whether raw looks like a local national id: one letter
// (either case) followed by exactly nine digits. Surrounding whitespace is ignored.
func IsValidLocalID(raw string) bool {
	runes := []rune(strings.TrimSpace(raw))
	if len(runes) != localIDLen {
		return false
	}
	if !unicode.IsLetter(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
