// Package utils provides shared utilities for text, math, and logging.
package utils

// Preview returns the first maxRunes runes of s, exactly as they appear.
// Shorter strings come back whole. Rune-aware so multibyte text is never cut
// mid-character.
func Preview(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

// Truncate returns s shortened to maxRunes runes with "..." appended when
// anything was cut. If maxRunes is 0 or negative, returns s unchanged. Meant
// for display output, not for stored data.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
