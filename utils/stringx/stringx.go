// File: stringx.go
// Title: String Utilities
// Description: Small string helpers shared by the lexer, configuration loader,
//              and CLI output code.

package stringx

import (
	"strings"
	"unicode/utf8"
)

// IsEmpty returns true if the string has zero length
func IsEmpty(s string) bool {
	return len(s) == 0
}

// IsBlank returns true if the string is empty or contains only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsNotBlank returns true if the string contains non-whitespace characters
func IsNotBlank(s string) bool {
	return !IsBlank(s)
}

// ContainsIgnoreCase reports whether substr is within s, ignoring case
func ContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// EqualsIgnoreCase reports whether two strings are equal, ignoring case
func EqualsIgnoreCase(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Truncate shortens s to maxLen runes, appending ellipsis when cut
func Truncate(s string, maxLen int, ellipsis string) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	cut := maxLen - utf8.RuneCountInString(ellipsis)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + ellipsis
}

// FirstNonBlank returns the first argument with non-whitespace content
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if IsNotBlank(v) {
			return v
		}
	}
	return ""
}

// FromBlankDefault returns s, or defaultValue when s is blank
func FromBlankDefault(s, defaultValue string) string {
	if IsBlank(s) {
		return defaultValue
	}
	return s
}

// SplitLines splits s on newlines, handling both \n and \r\n
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}
